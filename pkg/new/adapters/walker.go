package adapters

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain/feed"
)

var ErrCursorExhausted = errors.New("cursor has no more pages")

type PageFetcher interface {
	URL(requestURI string) string
	FetchPage(ctx context.Context, url string) (*feed.Page, error)
}

// Walker follows the next links of a pull one page at a time.
type Walker struct {
	fetcher  PageFetcher
	maxPages int
}

// NewWalker creates a walker; maxPages <= 0 disables the page limit but
// never the repeated link check.
func NewWalker(fetcher PageFetcher, maxPages int) *Walker {
	return &Walker{fetcher: fetcher, maxPages: maxPages}
}

func (w *Walker) Open(filter feed.Filter) *Cursor {
	return &Cursor{
		fetcher:  w.fetcher,
		maxPages: w.maxPages,
		next:     w.fetcher.URL(filter.RequestURI()),
		visited:  make(map[string]struct{}),
	}
}

// Pull fetches every page of filter. Non-final pages go to partial, or to
// callback when partial is nil, and the chain continues only while that
// function returns true. The terminal page always goes to callback. On a
// transport error callback receives nil exactly once and the error is
// returned.
func (w *Walker) Pull(ctx context.Context, filter feed.Filter, callback feed.PageFunc, partial feed.PageFunc) error {
	metrics.PullRequests.Inc()

	cursor := w.Open(filter)
	for {
		result := cursor.Next(ctx)
		switch result.Outcome {
		case feed.OutcomeFailed:
			callback(nil)
			return result.Err
		case feed.OutcomeDone:
			callback(result.Page)
			return nil
		case feed.OutcomeMore:
			fn := callback
			if partial != nil {
				fn = partial
			}
			if !fn(result.Page) {
				return nil
			}
		}
	}
}

// Cursor is a single pull chain. It is not safe for concurrent use.
type Cursor struct {
	fetcher  PageFetcher
	maxPages int
	next     string
	visited  map[string]struct{}
	pages    int
	done     bool
}

func (c *Cursor) Next(ctx context.Context) feed.Result {
	if c.done {
		return feed.Result{Outcome: feed.OutcomeFailed, Err: ErrCursorExhausted}
	}

	url := c.next
	c.visited[url] = struct{}{}
	c.pages++

	page, err := c.fetcher.FetchPage(ctx, url)
	if err != nil {
		c.done = true
		if errors.Is(err, ErrMalformedPage) {
			log.Printf("[WARN] treating unparseable page as terminal: %v", err)
			return feed.Result{Page: feed.NewPage(nil), Outcome: feed.OutcomeDone}
		}
		metrics.PullErrors.Inc()
		log.Printf("[ERROR] could not load url '%s': %v", url, err)
		return feed.Result{Outcome: feed.OutcomeFailed, Err: err}
	}
	metrics.PagesFetched.Inc()

	if page.Terminal() {
		c.done = true
		return feed.Result{Page: page, Outcome: feed.OutcomeDone}
	}

	if _, seen := c.visited[page.Next]; seen {
		log.Printf("[WARN] next link '%s' was already fetched, stopping pagination", page.Next)
		return c.cutoff(page)
	}
	if c.maxPages > 0 && c.pages >= c.maxPages {
		log.Printf("[WARN] reached %d pages at '%s', stopping pagination", c.maxPages, url)
		return c.cutoff(page)
	}

	c.next = page.Next
	return feed.Result{Page: page, Outcome: feed.OutcomeMore}
}

func (c *Cursor) cutoff(page *feed.Page) feed.Result {
	metrics.PaginationCutoffs.Inc()
	c.done = true
	page.Next = ""
	return feed.Result{Page: page, Outcome: feed.OutcomeDone}
}
