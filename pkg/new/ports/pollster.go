package ports

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain/feed"
	"golang.org/x/exp/slices"
)

const DefaultPollInterval = 30 * time.Second

type PollsterKind int

const (
	// FeedPollster renders feed metadata.
	FeedPollster PollsterKind = iota
	// EntryPollster renders entries it has not rendered before.
	EntryPollster
)

func (k PollsterKind) String() string {
	switch k {
	case FeedPollster:
		return "feed"
	case EntryPollster:
		return "entry"
	default:
		return "unknown"
	}
}

type Puller interface {
	Handle(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error
}

type FollowsGetter interface {
	Handle(ctx context.Context, id feed.FeedID) ([]feed.FeedID, error)
}

type SeenEntries interface {
	MarkSeen(ctx context.Context, feedID feed.FeedID, ids []string) ([]string, error)
}

// ElementFactory builds what gets rendered. entry is nil for feed
// pollsters.
type ElementFactory func(page *feed.Page, entry *atom.Entry) string

type Target interface {
	Render(id feed.FeedID, element string)
}

// Pollster keeps one render target in sync with a set of feeds. Every feed
// gets its own loop which pulls on start, on every interval and on Refresh.
type Pollster struct {
	id       ulid.ULID
	kind     PollsterKind
	puller   Puller
	follows  FollowsGetter
	seen     SeenEntries
	factory  ElementFactory
	target   Target
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lock    sync.Mutex
	feeds   []feed.FeedID
	refresh map[feed.FeedID]chan struct{}
	stopped bool
}

func NewPollster(
	kind PollsterKind,
	puller Puller,
	follows FollowsGetter,
	seen SeenEntries,
	factory ElementFactory,
	target Target,
	interval time.Duration,
) *Pollster {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	p := &Pollster{
		id:       ulid.Make(),
		kind:     kind,
		puller:   puller,
		follows:  follows,
		seen:     seen,
		factory:  factory,
		target:   target,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		refresh:  make(map[feed.FeedID]chan struct{}),
	}

	metrics.ActivePollsters.Inc()
	log.Printf("[DEBUG] started %s pollster %s", kind, p.id)
	return p
}

func (p *Pollster) ID() string {
	return p.id.String()
}

func (p *Pollster) Kind() PollsterKind {
	return p.kind
}

func (p *Pollster) Feeds() []feed.FeedID {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.feeds)
}

// AddFeed starts polling id. Feeds already watched and calls after Stop
// are ignored.
func (p *Pollster) AddFeed(id feed.FeedID) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.stopped || slices.Contains(p.feeds, id) {
		return
	}

	refresh := make(chan struct{}, 1)
	p.feeds = append(p.feeds, id)
	p.refresh[id] = refresh

	p.wg.Add(1)
	go p.run(id, refresh)
}

// AddFeedFollows adds every feed followed by id.
func (p *Pollster) AddFeedFollows(id feed.FeedID) error {
	follows, err := p.follows.Handle(p.ctx, id)
	if err != nil {
		return errors.Wrapf(err, "error getting follows of '%s'", id)
	}
	for _, follow := range follows {
		p.AddFeed(follow)
	}
	return nil
}

// Refresh asks the loop of id for an early pull. It does nothing if id is
// not watched.
func (p *Pollster) Refresh(id feed.FeedID) {
	p.lock.Lock()
	refresh, ok := p.refresh[id]
	p.lock.Unlock()

	if !ok {
		return
	}

	select {
	case refresh <- struct{}{}:
	default:
	}
}

// Stop cancels every loop and in-flight pull and waits for them to return.
// It can be called any number of times.
func (p *Pollster) Stop() {
	p.lock.Lock()
	if p.stopped {
		p.lock.Unlock()
		return
	}
	p.stopped = true
	p.lock.Unlock()

	p.cancel()
	p.wg.Wait()

	metrics.ActivePollsters.Dec()
	log.Printf("[DEBUG] stopped %s pollster %s", p.kind, p.id)
}

func (p *Pollster) run(id feed.FeedID, refresh <-chan struct{}) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			return
		}

		if err := p.pull(id); err != nil {
			log.Printf("[ERROR] pollster %s failed pulling '%s': %v", p.id, id, err)
		}

		select {
		case <-time.After(p.interval):
			continue
		case <-refresh:
			continue
		case <-p.ctx.Done():
			return
		}
	}
}

// pull reads only the first page: feed pollsters ask for metadata and
// entry pollsters only care about the newest entries.
func (p *Pollster) pull(id feed.FeedID) error {
	metrics.PollTicks.Inc()

	filter := feed.Filter{FeedID: id}
	if p.kind == FeedPollster {
		filter = filter.WithCount(0)
	}

	var renderErr error
	err := p.puller.Handle(p.ctx, filter, func(page *feed.Page) bool {
		if page != nil {
			renderErr = p.render(id, page)
		}
		return false
	}, nil)
	if err != nil {
		if p.ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "error pulling")
	}

	return renderErr
}

func (p *Pollster) render(id feed.FeedID, page *feed.Page) error {
	switch p.kind {
	case FeedPollster:
		p.deliver(id, p.factory(page, nil))
		return nil
	case EntryPollster:
		return p.renderEntries(id, page)
	default:
		return errors.Errorf("unknown pollster kind %d", p.kind)
	}
}

func (p *Pollster) renderEntries(id feed.FeedID, page *feed.Page) error {
	var ids []string
	for _, entry := range page.Entries() {
		if entry != nil && entry.ID != "" {
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	unseen, err := p.seen.MarkSeen(p.ctx, id, ids)
	if err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SEEN_ENTRIES"}).Inc()
		return errors.Wrap(err, "error diffing entries")
	}

	for _, entry := range page.Entries() {
		if entry != nil && slices.Contains(unseen, entry.ID) {
			p.deliver(id, p.factory(page, entry))
		}
	}
	return nil
}

// deliver drops renders that race with Stop.
func (p *Pollster) deliver(id feed.FeedID, element string) {
	p.lock.Lock()
	stopped := p.stopped
	p.lock.Unlock()

	if stopped {
		return
	}
	p.target.Render(id, element)
}
