package app

import (
	"context"

	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
)

type App struct {
	Pull          *HandlerPull
	GetFollows    *HandlerGetFollows
	GetAccounts   *HandlerGetAccounts
	SignIn        *HandlerSignIn
	SignOut       *HandlerSignOut
	CreateAccount *HandlerCreateAccount
	UpdateFeed    *HandlerUpdateFeed
	PostEntry     *HandlerPostEntry
	DeleteEntry   *HandlerDeleteEntry
	RepostEntry   *HandlerRepostEntry
	UnrepostEntry *HandlerUnrepostEntry
	LikeEntry     *HandlerLikeEntry
	UnlikeEntry   *HandlerUnlikeEntry
	FollowFeed    *HandlerFollowFeed
	UnfollowFeed  *HandlerUnfollowFeed
}

func NewApp(
	session *Session,
	walker Walker,
	poster Poster,
	accountLister AccountLister,
	publisher FeedChangedPublisher,
	cache Cache,
) App {
	getFollows := NewHandlerGetFollows(walker, session)
	pusher := newPusher(poster, getFollows, session, publisher)
	deleteEntry := NewHandlerDeleteEntry(pusher)

	return App{
		Pull:          NewHandlerPull(walker, session),
		GetFollows:    getFollows,
		GetAccounts:   NewHandlerGetAccounts(accountLister, cache),
		SignIn:        NewHandlerSignIn(pusher),
		SignOut:       NewHandlerSignOut(session),
		CreateAccount: NewHandlerCreateAccount(pusher),
		UpdateFeed:    NewHandlerUpdateFeed(pusher),
		PostEntry:     NewHandlerPostEntry(pusher, publisher),
		DeleteEntry:   deleteEntry,
		RepostEntry:   NewHandlerRepostEntry(pusher, publisher),
		UnrepostEntry: NewHandlerUnrepostEntry(walker, session, deleteEntry),
		LikeEntry:     NewHandlerLikeEntry(pusher, publisher),
		UnlikeEntry:   NewHandlerUnlikeEntry(walker, session, deleteEntry),
		FollowFeed:    NewHandlerFollowFeed(pusher, session, publisher),
		UnfollowFeed:  NewHandlerUnfollowFeed(walker, session, deleteEntry, publisher),
	}
}

type Walker interface {
	Pull(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error
}

type Poster interface {
	Post(ctx context.Context, id feed.FeedID, password domain.Password, post feed.Post) (*feed.Page, error)
}

type AccountLister interface {
	Accounts(ctx context.Context) ([]feed.FeedID, error)
}

type FeedChangedPublisher interface {
	Notify(id feed.FeedID)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
