package app

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
)

// pusher is the single write path: every successful post refreshes the
// session from the returned feed and announces the change.
type pusher struct {
	poster     Poster
	getFollows *HandlerGetFollows
	session    *Session
	publisher  FeedChangedPublisher
}

func newPusher(poster Poster, getFollows *HandlerGetFollows, session *Session, publisher FeedChangedPublisher) *pusher {
	return &pusher{
		poster:     poster,
		getFollows: getFollows,
		session:    session,
		publisher:  publisher,
	}
}

func (p *pusher) push(ctx context.Context, id feed.FeedID, password domain.Password, post feed.Post) (*feed.Page, error) {
	page, err := p.poster.Post(ctx, id, password, post)
	if err != nil {
		return nil, errors.Wrap(err, "error posting")
	}

	feedID, err := page.FeedID()
	if err != nil {
		return nil, errors.Wrap(err, "error reading the posted feed")
	}

	// the new credentials are not in the session yet
	filter := followsFilter(feedID).WithCredentials(feedID.String(), password.String())
	follows, err := p.getFollows.collect(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting follows of '%s'", feedID)
	}

	p.session.set(feedID, password, follows)
	log.Printf("[DEBUG] session refreshed for '%s' following %d feeds", feedID, len(follows))

	p.publisher.Notify(feedID)
	return page, nil
}

func (p *pusher) pushAuthenticated(ctx context.Context, post feed.Post) (*feed.Page, error) {
	id, password, ok := p.session.Credentials()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return p.push(ctx, id, password, post)
}
