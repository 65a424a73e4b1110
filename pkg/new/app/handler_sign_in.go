package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
)

type HandlerSignIn struct {
	pusher *pusher
}

func NewHandlerSignIn(pusher *pusher) *HandlerSignIn {
	return &HandlerSignIn{pusher: pusher}
}

// Handle authenticates with an empty post. On failure the session is left
// as it was; signing in while signed in replaces the session.
func (h *HandlerSignIn) Handle(ctx context.Context, id feed.FeedID, password domain.Password) (*feed.Page, error) {
	if id.IsZero() {
		return nil, errors.New("can't sign in without a feed id")
	}
	page, err := h.pusher.push(ctx, id, password, feed.Post{})
	if err != nil {
		return nil, errors.Wrapf(err, "error signing in as '%s'", id)
	}
	return page, nil
}

type HandlerSignOut struct {
	session *Session
}

func NewHandlerSignOut(session *Session) *HandlerSignOut {
	return &HandlerSignOut{session: session}
}

func (h *HandlerSignOut) Handle() {
	h.session.Clear()
}

type HandlerCreateAccount struct {
	pusher *pusher
}

func NewHandlerCreateAccount(pusher *pusher) *HandlerCreateAccount {
	return &HandlerCreateAccount{pusher: pusher}
}

// Handle creates a feed protected by password and signs in to it.
func (h *HandlerCreateAccount) Handle(ctx context.Context, password domain.Password) (feed.FeedID, error) {
	if password.IsZero() {
		return feed.FeedID{}, errors.New("can't create an account without a password")
	}
	page, err := h.pusher.push(ctx, feed.FeedID{}, password, feed.Post{})
	if err != nil {
		return feed.FeedID{}, errors.Wrap(err, "error creating an account")
	}
	return page.FeedID()
}

type HandlerUpdateFeed struct {
	pusher *pusher
}

func NewHandlerUpdateFeed(pusher *pusher) *HandlerUpdateFeed {
	return &HandlerUpdateFeed{pusher: pusher}
}

// Handle posts feed fields and files (title, subtitle, icon, logo) to the
// signed in feed.
func (h *HandlerUpdateFeed) Handle(ctx context.Context, post feed.Post) (*feed.Page, error) {
	page, err := h.pusher.pushAuthenticated(ctx, post)
	if err != nil {
		return nil, errors.Wrap(err, "error updating the feed")
	}
	return page, nil
}
