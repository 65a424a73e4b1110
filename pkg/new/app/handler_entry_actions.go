package app

import (
	"context"
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain/feed"
)

type HandlerDeleteEntry struct {
	pusher *pusher
}

func NewHandlerDeleteEntry(pusher *pusher) *HandlerDeleteEntry {
	return &HandlerDeleteEntry{pusher: pusher}
}

// Handle posts a delete mentioning the entry; the server does the rest.
func (h *HandlerDeleteEntry) Handle(ctx context.Context, id feed.EntryID) error {
	if _, err := h.pusher.pushAuthenticated(ctx, feed.NewVerbPost(feed.VerbDelete, "", id.String())); err != nil {
		return errors.Wrapf(err, "error deleting '%s'", id)
	}
	log.Printf("[DEBUG] deleted entry '%s'", id)
	return nil
}

type HandlerRepostEntry struct {
	entryVerb
}

func NewHandlerRepostEntry(pusher *pusher, publisher FeedChangedPublisher) *HandlerRepostEntry {
	return &HandlerRepostEntry{entryVerb{verb: feed.VerbRepost, pusher: pusher, publisher: publisher}}
}

type HandlerLikeEntry struct {
	entryVerb
}

func NewHandlerLikeEntry(pusher *pusher, publisher FeedChangedPublisher) *HandlerLikeEntry {
	return &HandlerLikeEntry{entryVerb{verb: feed.VerbLike, pusher: pusher, publisher: publisher}}
}

// entryVerb links and mentions an entry so its author sees the reaction.
type entryVerb struct {
	verb      feed.Verb
	pusher    *pusher
	publisher FeedChangedPublisher
}

func (h *entryVerb) Handle(ctx context.Context, id feed.EntryID) error {
	post := feed.NewVerbPost(h.verb, id.String(), id.String())
	if _, err := h.pusher.pushAuthenticated(ctx, post); err != nil {
		return errors.Wrapf(err, "error posting %s of '%s'", h.verb, id)
	}
	log.Printf("[DEBUG] posted %s of '%s'", h.verb, id)

	h.publisher.Notify(id.FeedID())
	return nil
}

type HandlerUnrepostEntry struct {
	undoEntryVerb
}

func NewHandlerUnrepostEntry(walker Walker, session *Session, deleteEntry *HandlerDeleteEntry) *HandlerUnrepostEntry {
	return &HandlerUnrepostEntry{undoEntryVerb{verb: feed.VerbRepost, walker: walker, session: session, deleteEntry: deleteEntry}}
}

type HandlerUnlikeEntry struct {
	undoEntryVerb
}

func NewHandlerUnlikeEntry(walker Walker, session *Session, deleteEntry *HandlerDeleteEntry) *HandlerUnlikeEntry {
	return &HandlerUnlikeEntry{undoEntryVerb{verb: feed.VerbLike, walker: walker, session: session, deleteEntry: deleteEntry}}
}

// undoEntryVerb deletes every entry of the signed in feed that carries the
// verb and mentions the entry.
type undoEntryVerb struct {
	verb        feed.Verb
	walker      Walker
	session     *Session
	deleteEntry *HandlerDeleteEntry
}

func (h *undoEntryVerb) Handle(ctx context.Context, id feed.EntryID) error {
	accountID, ok := h.session.AuthenticatedAccountID()
	if !ok {
		return ErrNotAuthenticated
	}

	filter := feed.Filter{FeedID: accountID, Verb: h.verb, Mention: id.String()}
	entries, err := collectEntries(ctx, h.walker, h.session.Decorate(filter))
	if err != nil {
		return errors.Wrapf(err, "error finding %s entries of '%s'", h.verb, id)
	}

	var resultErr error
	for _, entry := range entries {
		entryID, err := feed.NewEntryID(entry.ID)
		if err != nil {
			resultErr = multierror.Append(resultErr, errors.Wrapf(err, "invalid entry id '%s'", entry.ID))
			continue
		}
		if err := h.deleteEntry.Handle(ctx, entryID); err != nil {
			resultErr = multierror.Append(resultErr, err)
		}
	}

	return resultErr
}
