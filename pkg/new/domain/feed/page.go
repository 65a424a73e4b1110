package feed

import (
	"github.com/mmcdole/gofeed/atom"
	"github.com/pkg/errors"
)

// Page is one server response of a pull.
type Page struct {
	Feed *atom.Feed

	// Next is the absolute continuation url; empty on the terminal page.
	Next string
}

func NewPage(feed *atom.Feed) *Page {
	if feed == nil {
		feed = &atom.Feed{}
	}
	page := &Page{Feed: feed}
	for _, link := range feed.Links {
		if link != nil && link.Rel == "next" && link.Href != "" {
			page.Next = link.Href
			break
		}
	}
	return page
}

func (p *Page) Terminal() bool {
	return p.Next == ""
}

func (p *Page) Entries() []*atom.Entry {
	return p.Feed.Entries
}

func (p *Page) FeedID() (FeedID, error) {
	id, err := NewFeedID(p.Feed.ID)
	if err != nil {
		return FeedID{}, errors.Wrap(err, "page has no valid feed id")
	}
	return id, nil
}

// PageFunc receives a page; for non-final pages the return value tells
// the walker whether to fetch the next one.
type PageFunc func(page *Page) bool

type Outcome int

const (
	// OutcomeMore is a page with a continuation link.
	OutcomeMore Outcome = iota
	// OutcomeDone is the terminal page.
	OutcomeDone
	// OutcomeFailed carries a transport error and no page.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMore:
		return "more"
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Page    *Page
	Outcome Outcome
	Err     error
}
