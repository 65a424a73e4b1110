package pubsub

import (
	"log"
	"sync"
	"time"

	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain/feed"
	"golang.org/x/exp/slices"
)

const DefaultNotifyDebounce = 500 * time.Millisecond

type FeedChangedSubscriber func(id feed.FeedID)

// FeedChangedBus collects changed feed ids and delivers them to every
// subscriber once things have been quiet for the debounce delay.
type FeedChangedBus struct {
	lock        sync.Mutex
	queue       []feed.FeedID
	subscribers []FeedChangedSubscriber
	debouncer   *Debouncer
}

func NewFeedChangedBus(delay time.Duration) *FeedChangedBus {
	if delay <= 0 {
		delay = DefaultNotifyDebounce
	}
	b := &FeedChangedBus{}
	b.debouncer = NewDebouncer(delay, b.flush)
	return b
}

// Subscribe registers fn. Registering the same function twice makes it
// fire twice per id.
func (b *FeedChangedBus) Subscribe(fn FeedChangedSubscriber) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.subscribers = append(b.subscribers, fn)
}

// Notify queues id unless it is already pending and restarts the debounce.
// Subscribers are never called from within Notify.
func (b *FeedChangedBus) Notify(id feed.FeedID) {
	metrics.Notifications.Inc()

	b.lock.Lock()
	if !slices.Contains(b.queue, id) {
		b.queue = append(b.queue, id)
	}
	b.lock.Unlock()

	b.debouncer.Trigger()
}

func (b *FeedChangedBus) Close() {
	b.debouncer.Stop()
}

func (b *FeedChangedBus) flush() {
	b.lock.Lock()
	queue := b.queue
	b.queue = nil
	subscribers := slices.Clone(b.subscribers)
	b.lock.Unlock()

	if len(queue) == 0 {
		return
	}

	metrics.NotificationFlushes.Inc()
	log.Printf("[DEBUG] flushing %d changed feeds to %d subscribers", len(queue), len(subscribers))

	for _, id := range queue {
		for _, subscriber := range subscribers {
			subscriber(id)
		}
	}
}
