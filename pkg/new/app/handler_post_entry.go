package app

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain/feed"
)

var ErrEmptyEntry = errors.New("entry needs a status, content, url or attachment")

type HandlerPostEntry struct {
	pusher    *pusher
	publisher FeedChangedPublisher
}

func NewHandlerPostEntry(pusher *pusher, publisher FeedChangedPublisher) *HandlerPostEntry {
	return &HandlerPostEntry{pusher: pusher, publisher: publisher}
}

// Handle publishes an entry, or a reply when the verb is reply. Other
// verbs have their own handlers.
func (h *HandlerPostEntry) Handle(ctx context.Context, post feed.Post) (*feed.Page, error) {
	if !post.HasEntry() {
		return nil, ErrEmptyEntry
	}

	switch post.Verb {
	case feed.VerbNone:
	case feed.VerbReply:
		if post.Mention == "" {
			return nil, errors.New("a reply needs a mention")
		}
	default:
		return nil, errors.Errorf("can't post an entry with verb '%s'", post.Verb)
	}

	page, err := h.pusher.pushAuthenticated(ctx, post)
	if err != nil {
		return nil, errors.Wrap(err, "error posting an entry")
	}

	if post.Verb == feed.VerbReply {
		if replyTo, err := feed.NewEntryID(post.Mention); err == nil {
			h.publisher.Notify(replyTo.FeedID())
		}
	}
	log.Printf("[DEBUG] posted an entry with %d attachments", len(post.Attachments))

	return page, nil
}
