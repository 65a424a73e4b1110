package app

import (
	"context"

	"github.com/trsst/client/pkg/new/domain/feed"
)

// HandlerPull pulls on behalf of the current session, so entries
// encrypted for the signed in account come back decrypted.
type HandlerPull struct {
	walker  Walker
	session *Session
}

func NewHandlerPull(walker Walker, session *Session) *HandlerPull {
	return &HandlerPull{walker: walker, session: session}
}

func (h *HandlerPull) Handle(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error {
	return h.walker.Pull(ctx, h.session.Decorate(filter), callback, partial)
}
