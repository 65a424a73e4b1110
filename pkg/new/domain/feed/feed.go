package feed

import (
	"errors"
	"strings"

	"github.com/trsst/client/pkg/helpers"
)

const (
	FeedURNPrefix  = "urn:feed:"
	EntryURNPrefix = "urn:entry:"
)

// FeedID identifies a feed. Only the resource part is stored; String
// re-adds the urn prefix. Resources are opaque: external feeds use their
// url, as in urn:feed:http://example.com/rss.xml.
type FeedID struct {
	resource string
}

func NewFeedID(s string) (FeedID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, FeedURNPrefix)
	if s == "" {
		return FeedID{}, errors.New("feed id can't be an empty string")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return FeedID{}, errors.New("feed id can't contain whitespace")
	}
	return FeedID{resource: s}, nil
}

func MustNewFeedID(s string) FeedID {
	id, err := NewFeedID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Resource returns the id as sent on the wire.
func (f FeedID) Resource() string {
	return f.resource
}

func (f FeedID) String() string {
	if f.resource == "" {
		return ""
	}
	return FeedURNPrefix + f.resource
}

// IsExternal reports whether the feed is a url served through the server
// rather than a feed hosted by it.
func (f FeedID) IsExternal() bool {
	return strings.HasPrefix(f.resource, "http://") || strings.HasPrefix(f.resource, "https://")
}

func (f FeedID) IsZero() bool {
	return f.resource == ""
}

func (f FeedID) Equal(o FeedID) bool {
	return f.resource == o.resource
}

// EntryID identifies an entry as urn:entry:<feedResource>:<suffix>.
type EntryID struct {
	feed   FeedID
	suffix string
}

func NewEntryID(s string) (EntryID, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, EntryURNPrefix) {
		return EntryID{}, errors.New("entry id must start with " + EntryURNPrefix)
	}
	rest := strings.TrimPrefix(s, EntryURNPrefix)
	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 {
		return EntryID{}, errors.New("entry id must contain a feed and an entry part")
	}

	feedID, err := NewFeedID(rest[:i])
	if err != nil {
		return EntryID{}, err
	}

	return EntryID{feed: feedID, suffix: rest[i+1:]}, nil
}

func MustNewEntryID(s string) EntryID {
	id, err := NewEntryID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (e EntryID) FeedID() FeedID {
	return e.feed
}

// Suffix is the entry part used in /pull/<feed>/<suffix> paths.
func (e EntryID) Suffix() string {
	return e.suffix
}

func (e EntryID) String() string {
	if e.suffix == "" {
		return ""
	}
	return EntryURNPrefix + e.feed.Resource() + ":" + e.suffix
}

func (e EntryID) IsZero() bool {
	return e.suffix == ""
}

// Address is the base url of a trsst server.
type Address struct {
	s string
}

func NewAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, errors.New("address can't be an empty string")
	}

	if !helpers.IsValidHttpUrl(s) {
		return Address{}, errors.New("invalid URL provided (must be in absolute format and with http or https scheme)")
	}

	return Address{s: strings.TrimSuffix(s, "/")}, nil
}

func (a Address) String() string {
	return a.s
}
