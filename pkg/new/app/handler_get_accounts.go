package app

import (
	"context"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const accountsCacheKey = "trsst:accounts"

type HandlerGetAccounts struct {
	lister AccountLister
	cache  Cache
}

func NewHandlerGetAccounts(lister AccountLister, cache Cache) *HandlerGetAccounts {
	return &HandlerGetAccounts{lister: lister, cache: cache}
}

// Handle lists the accounts hosted by the server. Cache failures are
// logged and fall back to the server.
func (h *HandlerGetAccounts) Handle(ctx context.Context) ([]feed.FeedID, error) {
	if cached, err := h.cache.Get(ctx, accountsCacheKey); err == nil {
		accounts, err := decodeAccounts(cached)
		if err == nil {
			return accounts, nil
		}
		log.Printf("[WARN] ignoring invalid cached accounts: %v", err)
	}

	accounts, err := h.lister.Accounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error listing accounts")
	}

	if err := h.cache.Set(ctx, accountsCacheKey, encodeAccounts(accounts)); err != nil {
		log.Printf("[ERROR] failed to cache accounts: %v", err)
	}

	return accounts, nil
}

func encodeAccounts(accounts []feed.FeedID) string {
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.String())
	}
	return strings.Join(ids, "\n")
}

func decodeAccounts(s string) ([]feed.FeedID, error) {
	var accounts []feed.FeedID
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		id, err := feed.NewFeedID(line)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account '%s'", line)
		}
		accounts = append(accounts, id)
	}
	return accounts, nil
}
