package app

import (
	"context"
	"log"

	"github.com/mmcdole/gofeed/atom"
	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain/feed"
	"golang.org/x/exp/slices"
)

type HandlerGetFollows struct {
	walker  Walker
	session *Session
}

func NewHandlerGetFollows(walker Walker, session *Session) *HandlerGetFollows {
	return &HandlerGetFollows{walker: walker, session: session}
}

// Handle returns the feeds followed by id, reading every page of its
// follow entries.
func (h *HandlerGetFollows) Handle(ctx context.Context, id feed.FeedID) ([]feed.FeedID, error) {
	return h.collect(ctx, h.session.Decorate(followsFilter(id)))
}

func (h *HandlerGetFollows) collect(ctx context.Context, filter feed.Filter) ([]feed.FeedID, error) {
	entries, err := collectEntries(ctx, h.walker, filter)
	if err != nil {
		return nil, errors.Wrap(err, "error collecting follow entries")
	}

	var follows []feed.FeedID
	for _, entry := range entries {
		id, err := feed.NewFeedID(contentSrc(entry))
		if err != nil {
			log.Printf("[WARN] follow entry '%s' has no valid feed: %v", entry.ID, err)
			continue
		}
		if !slices.Contains(follows, id) {
			follows = append(follows, id)
		}
	}
	return follows, nil
}

func followsFilter(id feed.FeedID) feed.Filter {
	return feed.Filter{FeedID: id, Verb: feed.VerbFollow}
}

// collectEntries gathers the entries of every page. Partial results are
// discarded when any page fails.
func collectEntries(ctx context.Context, walker Walker, filter feed.Filter) ([]*atom.Entry, error) {
	var entries []*atom.Entry
	gather := func(page *feed.Page) bool {
		if page == nil {
			return false
		}
		entries = append(entries, page.Entries()...)
		return true
	}

	if err := walker.Pull(ctx, filter, gather, gather); err != nil {
		return nil, err
	}
	return entries, nil
}

func contentSrc(entry *atom.Entry) string {
	if entry == nil || entry.Content == nil {
		return ""
	}
	return entry.Content.Src
}
