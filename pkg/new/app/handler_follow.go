package app

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain/feed"
)

var ErrFollowNotFound = errors.New("follow entry not found")

type HandlerFollowFeed struct {
	pusher    *pusher
	session   *Session
	publisher FeedChangedPublisher
}

func NewHandlerFollowFeed(pusher *pusher, session *Session, publisher FeedChangedPublisher) *HandlerFollowFeed {
	return &HandlerFollowFeed{pusher: pusher, session: session, publisher: publisher}
}

// Handle is a no-op when the feed is already followed.
func (h *HandlerFollowFeed) Handle(ctx context.Context, id feed.FeedID) error {
	if _, ok := h.session.AuthenticatedAccountID(); !ok {
		return ErrNotAuthenticated
	}
	if h.session.IsFollowing(id) {
		return nil
	}

	post := feed.NewVerbPost(feed.VerbFollow, id.String(), id.String())
	if _, err := h.pusher.pushAuthenticated(ctx, post); err != nil {
		return errors.Wrapf(err, "error following '%s'", id)
	}
	log.Printf("[DEBUG] following '%s'", id)

	h.publisher.Notify(id)
	return nil
}

type HandlerUnfollowFeed struct {
	walker      Walker
	session     *Session
	deleteEntry *HandlerDeleteEntry
	publisher   FeedChangedPublisher
}

func NewHandlerUnfollowFeed(walker Walker, session *Session, deleteEntry *HandlerDeleteEntry, publisher FeedChangedPublisher) *HandlerUnfollowFeed {
	return &HandlerUnfollowFeed{walker: walker, session: session, deleteEntry: deleteEntry, publisher: publisher}
}

// Handle deletes the follow entry pointing at id. It is a no-op when the
// feed is not followed.
func (h *HandlerUnfollowFeed) Handle(ctx context.Context, id feed.FeedID) error {
	accountID, ok := h.session.AuthenticatedAccountID()
	if !ok {
		return ErrNotAuthenticated
	}
	if !h.session.IsFollowing(id) {
		return nil
	}

	entries, err := collectEntries(ctx, h.walker, h.session.Decorate(followsFilter(accountID)))
	if err != nil {
		return errors.Wrap(err, "error finding follow entries")
	}

	var matches []feed.EntryID
	for _, entry := range entries {
		followed, err := feed.NewFeedID(contentSrc(entry))
		if err != nil || !followed.Equal(id) {
			continue
		}
		entryID, err := feed.NewEntryID(entry.ID)
		if err != nil {
			log.Printf("[WARN] follow entry has invalid id '%s': %v", entry.ID, err)
			continue
		}
		matches = append(matches, entryID)
	}

	if len(matches) == 0 {
		return errors.Wrapf(ErrFollowNotFound, "feed '%s'", id)
	}
	if len(matches) > 1 {
		log.Printf("[WARN] found %d follow entries for '%s', deleting the first", len(matches), id)
	}

	if err := h.deleteEntry.Handle(ctx, matches[0]); err != nil {
		return errors.Wrapf(err, "error unfollowing '%s'", id)
	}
	log.Printf("[DEBUG] unfollowed '%s'", id)

	h.publisher.Notify(id)
	return nil
}
