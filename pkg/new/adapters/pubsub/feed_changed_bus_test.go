package pubsub_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trsst/client/pkg/new/adapters/pubsub"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const testDelay = 20 * time.Millisecond

type received struct {
	lock sync.Mutex
	ids  []string
}

func (r *received) subscriber(id feed.FeedID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ids = append(r.ids, id.String())
}

func (r *received) get() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.ids...)
}

func TestFeedChangedBusCollapsesBurst(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(testDelay)
	defer bus.Close()

	var first, second received
	bus.Subscribe(first.subscriber)
	bus.Subscribe(second.subscriber)

	a := feed.MustNewFeedID("a")
	for i := 0; i < 5; i++ {
		bus.Notify(a)
	}

	require.Eventually(t, func() bool {
		return len(first.get()) > 0 && len(second.get()) > 0
	}, time.Second, time.Millisecond)

	<-time.After(3 * testDelay)
	assert.Equal(t, []string{"urn:feed:a"}, first.get())
	assert.Equal(t, []string{"urn:feed:a"}, second.get())
}

func TestFeedChangedBusDeliversInNotifyOrder(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(testDelay)
	defer bus.Close()

	var r received
	bus.Subscribe(r.subscriber)

	bus.Notify(feed.MustNewFeedID("a"))
	bus.Notify(feed.MustNewFeedID("b"))
	bus.Notify(feed.MustNewFeedID("a"))

	require.Eventually(t, func() bool {
		return len(r.get()) == 2
	}, time.Second, time.Millisecond)

	<-time.After(3 * testDelay)
	assert.Equal(t, []string{"urn:feed:a", "urn:feed:b"}, r.get())
}

func TestFeedChangedBusNeverDeliversSynchronously(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(time.Hour)
	defer bus.Close()

	var r received
	bus.Subscribe(r.subscriber)
	bus.Notify(feed.MustNewFeedID("a"))

	assert.Empty(t, r.get())
}

func TestFeedChangedBusFiresDuplicateRegistrations(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(testDelay)
	defer bus.Close()

	var r received
	bus.Subscribe(r.subscriber)
	bus.Subscribe(r.subscriber)
	bus.Notify(feed.MustNewFeedID("a"))

	require.Eventually(t, func() bool {
		return len(r.get()) == 2
	}, time.Second, time.Millisecond)
}

func TestFeedChangedBusStartsNewCycleAfterFlush(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(testDelay)
	defer bus.Close()

	var r received
	bus.Subscribe(r.subscriber)

	bus.Notify(feed.MustNewFeedID("a"))
	require.Eventually(t, func() bool {
		return len(r.get()) == 1
	}, time.Second, time.Millisecond)

	bus.Notify(feed.MustNewFeedID("a"))
	require.Eventually(t, func() bool {
		return len(r.get()) == 2
	}, time.Second, time.Millisecond)
}

func TestFeedChangedBusCloseCancelsPendingFlush(t *testing.T) {
	bus := pubsub.NewFeedChangedBus(testDelay)

	var r received
	bus.Subscribe(r.subscriber)
	bus.Notify(feed.MustNewFeedID("a"))
	bus.Close()

	<-time.After(3 * testDelay)
	assert.Empty(t, r.get())
}

func TestDebouncerRestartsOnTrigger(t *testing.T) {
	var lock sync.Mutex
	runs := 0
	debouncer := pubsub.NewDebouncer(testDelay, func() {
		lock.Lock()
		defer lock.Unlock()
		runs++
	})

	for i := 0; i < 4; i++ {
		debouncer.Trigger()
		<-time.After(testDelay / 4)
	}

	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return runs == 1
	}, time.Second, time.Millisecond)
}
