package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/converter"
	"github.com/trsst/client/pkg/custom_cache"
	"github.com/trsst/client/pkg/new/adapters"
	"github.com/trsst/client/pkg/new/adapters/pubsub"
	"github.com/trsst/client/pkg/new/app"
	"github.com/trsst/client/pkg/new/domain/feed"
	"github.com/trsst/client/pkg/new/ports"
	portspubsub "github.com/trsst/client/pkg/new/ports/pubsub"
)

// Environment is everything a command needs, built once from the config.
type Environment struct {
	config      Config
	out         io.Writer
	session     *app.Session
	app         app.App
	bus         *pubsub.FeedChangedBus
	pollsters   *portspubsub.Pollsters
	seen        ports.SeenEntries
	converter   *converter.TextConverter
	healthCheck *health.Health
	db          *sql.DB
}

func NewEnvironment(config Config, out io.Writer) (*Environment, error) {
	address, err := feed.NewAddress(config.ServerURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid server url")
	}

	client := adapters.NewTrsstClient(address, adapters.NewDownloader(config.HTTPTimeout))
	walker := adapters.NewWalker(client, config.MaxPages)
	bus := pubsub.NewFeedChangedBus(config.NotifyDebounce)

	cache, err := custom_cache.New(config.CacheBackend, config.CacheRedisAddr, config.CacheTTL)
	if err != nil {
		return nil, errors.Wrap(err, "error creating the cache")
	}

	textConverter, err := converter.NewTextConverter(config.MaxContentLength, address)
	if err != nil {
		return nil, errors.Wrap(err, "error creating the converter")
	}

	seen, db, err := newSeenEntries(config.SeenDB)
	if err != nil {
		return nil, errors.Wrap(err, "error creating the seen entries storage")
	}

	session := app.NewSession()
	application := app.NewApp(session, walker, client, client, bus, cache)

	return &Environment{
		config:      config,
		out:         out,
		session:     session,
		app:         application,
		bus:         bus,
		pollsters:   portspubsub.NewPollsters(bus),
		seen:        seen,
		converter:   textConverter,
		healthCheck: CreateHealthCheck(config.Version, application.GetAccounts),
		db:          db,
	}, nil
}

func (e *Environment) NewPollster(kind ports.PollsterKind, target ports.Target) *ports.Pollster {
	return ports.NewPollster(
		kind,
		e.app.Pull,
		e.app.GetFollows,
		e.seen,
		e.converter.Element,
		target,
		e.config.PollInterval,
	)
}

func (e *Environment) Close() {
	e.pollsters.Stop()
	e.bus.Close()
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			log.Printf("[ERROR] failed to close the database connection: %v", err)
		}
	}
}

type accountsHandler interface {
	Handle(ctx context.Context) ([]feed.FeedID, error)
}

func CreateHealthCheck(version string, accounts accountsHandler) *health.Health {
	h, err := health.New(health.WithComponent(health.Component{
		Name:    "trsst",
		Version: version,
	}), health.WithChecks(health.Config{
		Name:      "trsst-server",
		Timeout:   time.Second * 5,
		SkipOnErr: false,
		Check: func(ctx context.Context) error {
			_, err := accounts.Handle(ctx)
			return err
		},
	},
	))
	if err != nil {
		log.Printf("[ERROR] failed to create the health check: %v", err)
	}
	return h
}

// printTarget writes rendered elements to the terminal.
type printTarget struct {
	lock sync.Mutex
	out  io.Writer
}

func newPrintTarget(out io.Writer) *printTarget {
	return &printTarget{out: out}
}

func (t *printTarget) Render(id feed.FeedID, element string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, _ = fmt.Fprintf(t.out, "--- %s\n%s\n\n", id, element)
}
