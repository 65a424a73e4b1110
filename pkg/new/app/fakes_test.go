package app_test

import (
	"context"
	"errors"
	"sync"

	"github.com/mmcdole/gofeed/atom"
	"github.com/trsst/client/pkg/new/app"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
)

var errRejected = errors.New("rejected")

type fakeWalker struct {
	lock    sync.Mutex
	pages   func(filter feed.Filter) ([]*feed.Page, error)
	filters []feed.Filter
}

func (w *fakeWalker) Pull(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error {
	w.lock.Lock()
	w.filters = append(w.filters, filter)
	w.lock.Unlock()

	pages, err := w.pages(filter)
	if err != nil {
		callback(nil)
		return err
	}
	if len(pages) == 0 {
		callback(feed.NewPage(nil))
		return nil
	}
	for i, page := range pages {
		if i == len(pages)-1 {
			callback(page)
			return nil
		}
		fn := callback
		if partial != nil {
			fn = partial
		}
		if !fn(page) {
			return nil
		}
	}
	return nil
}

func (w *fakeWalker) Filters() []feed.Filter {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([]feed.Filter(nil), w.filters...)
}

type postCall struct {
	ID       feed.FeedID
	Password domain.Password
	Post     feed.Post
}

type fakePoster struct {
	lock   sync.Mutex
	result func(call postCall) (*feed.Page, error)
	calls  []postCall
}

func (p *fakePoster) Post(ctx context.Context, id feed.FeedID, password domain.Password, post feed.Post) (*feed.Page, error) {
	call := postCall{ID: id, Password: password, Post: post}

	p.lock.Lock()
	p.calls = append(p.calls, call)
	p.lock.Unlock()

	return p.result(call)
}

func (p *fakePoster) Calls() []postCall {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]postCall(nil), p.calls...)
}

type fakePublisher struct {
	lock sync.Mutex
	ids  []string
}

func (p *fakePublisher) Notify(id feed.FeedID) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ids = append(p.ids, id.String())
}

func (p *fakePublisher) IDs() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.ids...)
}

type fakeAccountLister struct {
	accounts []feed.FeedID
	calls    int
}

func (l *fakeAccountLister) Accounts(ctx context.Context) ([]feed.FeedID, error) {
	l.calls++
	return l.accounts, nil
}

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value string) error {
	c.values[key] = value
	return nil
}

type fixture struct {
	app       app.App
	session   *app.Session
	walker    *fakeWalker
	poster    *fakePoster
	publisher *fakePublisher
	lister    *fakeAccountLister
}

// newFixture answers every post with the feed of the posting account, or
// "me" for new accounts, and every follow pull with follows.
func newFixture(follows ...string) *fixture {
	f := &fixture{
		session:   app.NewSession(),
		publisher: &fakePublisher{},
		lister:    &fakeAccountLister{},
	}
	f.walker = &fakeWalker{pages: func(filter feed.Filter) ([]*feed.Page, error) {
		if filter.Verb != feed.VerbFollow {
			return nil, nil
		}
		var entries []*atom.Entry
		for i, follow := range follows {
			entries = append(entries, followEntry(filter.FeedID.Resource(), i, follow))
		}
		return []*feed.Page{feedPage(filter.FeedID.String(), entries...)}, nil
	}}
	f.poster = &fakePoster{result: func(call postCall) (*feed.Page, error) {
		if call.ID.IsZero() {
			return feedPage("urn:feed:me"), nil
		}
		return feedPage(call.ID.String()), nil
	}}
	f.app = app.NewApp(f.session, f.walker, f.poster, f.lister, f.publisher, newFakeCache())
	return f
}

func (f *fixture) signIn(id string) error {
	_, err := f.app.SignIn.Handle(context.Background(), feed.MustNewFeedID(id), mustPassword("secret"))
	return err
}

func feedPage(id string, entries ...*atom.Entry) *feed.Page {
	return feed.NewPage(&atom.Feed{ID: id, Entries: entries})
}

func followEntry(feedResource string, i int, src string) *atom.Entry {
	return &atom.Entry{
		ID:      feed.EntryURNPrefix + feedResource + ":" + string(rune('a'+i)),
		Content: &atom.Content{Src: src},
	}
}

func mustPassword(s string) domain.Password {
	p, err := domain.NewPassword(s)
	if err != nil {
		panic(err)
	}
	return p
}
