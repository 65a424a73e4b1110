package app

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
	"golang.org/x/exp/slices"
)

var ErrNotAuthenticated = errors.New("not signed in")

// Session holds the signed in account. The password never leaves memory.
type Session struct {
	lock     sync.RWMutex
	id       feed.FeedID
	password domain.Password
	follows  []feed.FeedID
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) AuthenticatedAccountID() (feed.FeedID, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.authenticated() {
		return feed.FeedID{}, false
	}
	return s.id, true
}

// IsFollowing is false for every id while signed out.
func (s *Session) IsFollowing(id feed.FeedID) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.authenticated() {
		return false
	}
	return slices.Contains(s.follows, id)
}

// Follows returns nil while signed out.
func (s *Session) Follows() []feed.FeedID {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.authenticated() {
		return nil
	}
	return slices.Clone(s.follows)
}

func (s *Session) Credentials() (feed.FeedID, domain.Password, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if !s.authenticated() {
		return feed.FeedID{}, domain.Password{}, false
	}
	return s.id, s.password, true
}

// Decorate returns a copy of filter carrying the decryption credentials of
// the signed in account, if any.
func (s *Session) Decorate(filter feed.Filter) feed.Filter {
	id, password, ok := s.Credentials()
	if !ok {
		return filter
	}
	return filter.WithCredentials(id.String(), password.String())
}

func (s *Session) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.id = feed.FeedID{}
	s.password = domain.Password{}
	s.follows = nil
}

func (s *Session) set(id feed.FeedID, password domain.Password, follows []feed.FeedID) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.id = id
	s.password = password
	s.follows = slices.Clone(follows)
}

func (s *Session) authenticated() bool {
	return !s.id.IsZero() && !s.password.IsZero()
}
