package pubsub

import (
	"log"
	"sync"

	"github.com/trsst/client/pkg/new/adapters/pubsub"
	"github.com/trsst/client/pkg/new/domain/feed"
	"github.com/trsst/client/pkg/new/ports"
)

// Pollsters holds the pollsters of the current view and refreshes them
// when the bus reports a changed feed.
type Pollsters struct {
	lock      sync.Mutex
	pollsters []*ports.Pollster
}

func NewPollsters(bus *pubsub.FeedChangedBus) *Pollsters {
	p := &Pollsters{}
	bus.Subscribe(p.Handle)
	return p
}

// Replace stops the current pollsters and installs new ones.
func (p *Pollsters) Replace(pollsters ...*ports.Pollster) {
	p.lock.Lock()
	previous := p.pollsters
	p.pollsters = pollsters
	p.lock.Unlock()

	for _, pollster := range previous {
		pollster.Stop()
	}
}

func (p *Pollsters) List() []*ports.Pollster {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]*ports.Pollster(nil), p.pollsters...)
}

func (p *Pollsters) Stop() {
	p.Replace()
}

func (p *Pollsters) Handle(id feed.FeedID) {
	pollsters := p.List()

	log.Printf("[DEBUG] feed '%s' changed, refreshing %d pollsters", id, len(pollsters))
	for _, pollster := range pollsters {
		pollster.Refresh(id)
	}
}
