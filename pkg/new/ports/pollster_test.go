package ports_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trsst/client/pkg/new/adapters"
	"github.com/trsst/client/pkg/new/domain/feed"
	"github.com/trsst/client/pkg/new/ports"
)

type fakePuller struct {
	lock    sync.Mutex
	filters []feed.Filter
	entries func(id feed.FeedID, pull int) []string
}

func (p *fakePuller) Handle(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error {
	p.lock.Lock()
	p.filters = append(p.filters, filter)
	pull := 0
	for _, f := range p.filters {
		if f.FeedID == filter.FeedID {
			pull++
		}
	}
	p.lock.Unlock()

	parsed := &atom.Feed{ID: filter.FeedID.String(), Title: filter.FeedID.Resource()}
	if p.entries != nil {
		for _, id := range p.entries(filter.FeedID, pull) {
			parsed.Entries = append(parsed.Entries, &atom.Entry{ID: id})
		}
	}
	callback(feed.NewPage(parsed))
	return nil
}

func (p *fakePuller) Pulls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.filters)
}

func (p *fakePuller) Filters() []feed.Filter {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]feed.Filter(nil), p.filters...)
}

type fakeFollows struct {
	follows []feed.FeedID
}

func (f fakeFollows) Handle(ctx context.Context, id feed.FeedID) ([]feed.FeedID, error) {
	return f.follows, nil
}

type fakeTarget struct {
	lock     sync.Mutex
	elements []string
}

func (t *fakeTarget) Render(id feed.FeedID, element string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.elements = append(t.elements, element)
}

func (t *fakeTarget) Elements() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string(nil), t.elements...)
}

func elementFactory(page *feed.Page, entry *atom.Entry) string {
	if entry == nil {
		return "feed " + page.Feed.ID
	}
	return "entry " + entry.ID
}

func newPollster(kind ports.PollsterKind, puller *fakePuller, target *fakeTarget, interval time.Duration, follows ...feed.FeedID) *ports.Pollster {
	return ports.NewPollster(
		kind,
		puller,
		fakeFollows{follows: follows},
		adapters.NewMemorySeenEntryStorage(),
		elementFactory,
		target,
		interval,
	)
}

func TestPollsterStopIsIdempotentAndFinal(t *testing.T) {
	puller := &fakePuller{}
	pollster := newPollster(ports.FeedPollster, puller, &fakeTarget{}, time.Millisecond)
	pollster.AddFeed(feed.MustNewFeedID("a"))

	require.Eventually(t, func() bool { return puller.Pulls() >= 3 }, time.Second, time.Millisecond)

	pollster.Stop()
	pollster.Stop()
	pulls := puller.Pulls()

	<-time.After(20 * time.Millisecond)
	assert.Equal(t, pulls, puller.Pulls())

	pollster.AddFeed(feed.MustNewFeedID("b"))
	<-time.After(20 * time.Millisecond)
	assert.Equal(t, pulls, puller.Pulls())
}

func TestFeedPollsterPullsMetadataOnly(t *testing.T) {
	puller := &fakePuller{}
	target := &fakeTarget{}
	pollster := newPollster(ports.FeedPollster, puller, target, time.Hour)
	defer pollster.Stop()

	pollster.AddFeed(feed.MustNewFeedID("a"))
	require.Eventually(t, func() bool { return len(target.Elements()) == 1 }, time.Second, time.Millisecond)

	filters := puller.Filters()
	require.Len(t, filters, 1)
	require.NotNil(t, filters[0].Count)
	assert.Equal(t, 0, *filters[0].Count)
	assert.Equal(t, []string{"feed urn:feed:a"}, target.Elements())
}

func TestEntryPollsterRendersOnlyNewEntries(t *testing.T) {
	puller := &fakePuller{entries: func(id feed.FeedID, pull int) []string {
		var ids []string
		for i := pull + 1; i >= 1; i-- {
			ids = append(ids, fmt.Sprintf("urn:entry:%s:%d", id.Resource(), i))
		}
		return ids
	}}
	target := &fakeTarget{}
	pollster := newPollster(ports.EntryPollster, puller, target, time.Hour)
	defer pollster.Stop()

	a := feed.MustNewFeedID("a")
	pollster.AddFeed(a)
	require.Eventually(t, func() bool { return len(target.Elements()) == 2 }, time.Second, time.Millisecond)
	assert.Nil(t, puller.Filters()[0].Count)

	pollster.Refresh(a)
	require.Eventually(t, func() bool { return len(target.Elements()) == 3 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{
		"entry urn:entry:a:2",
		"entry urn:entry:a:1",
		"entry urn:entry:a:3",
	}, target.Elements())
}

func TestPollsterIgnoresDuplicateFeeds(t *testing.T) {
	puller := &fakePuller{}
	pollster := newPollster(ports.FeedPollster, puller, &fakeTarget{}, time.Hour)
	defer pollster.Stop()

	pollster.AddFeed(feed.MustNewFeedID("a"))
	pollster.AddFeed(feed.MustNewFeedID("urn:feed:a"))
	pollster.AddFeed(feed.MustNewFeedID("b"))

	assert.Equal(t, []feed.FeedID{feed.MustNewFeedID("a"), feed.MustNewFeedID("b")}, pollster.Feeds())
	require.Eventually(t, func() bool { return puller.Pulls() == 2 }, time.Second, time.Millisecond)
}

func TestPollsterAddFeedFollows(t *testing.T) {
	puller := &fakePuller{}
	follows := []feed.FeedID{feed.MustNewFeedID("x"), feed.MustNewFeedID("y")}
	pollster := newPollster(ports.EntryPollster, puller, &fakeTarget{}, time.Hour, follows...)
	defer pollster.Stop()

	require.NoError(t, pollster.AddFeedFollows(feed.MustNewFeedID("me")))
	assert.Equal(t, follows, pollster.Feeds())
}

func TestPollsterRefreshIgnoresUnwatchedFeeds(t *testing.T) {
	puller := &fakePuller{}
	pollster := newPollster(ports.FeedPollster, puller, &fakeTarget{}, time.Hour)
	defer pollster.Stop()

	pollster.AddFeed(feed.MustNewFeedID("a"))
	require.Eventually(t, func() bool { return puller.Pulls() == 1 }, time.Second, time.Millisecond)

	pollster.Refresh(feed.MustNewFeedID("b"))
	<-time.After(20 * time.Millisecond)
	assert.Equal(t, 1, puller.Pulls())
}
