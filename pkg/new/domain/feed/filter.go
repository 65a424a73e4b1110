package feed

import (
	"net/url"
	"strconv"
	"strings"
)

const PullPathPrefix = "/pull/"

// pathEscaper keeps the slashes of external feed urls.
var pathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23", " ", "%20")

// Filter is a pull query. It is passed by value so a pull never mutates
// the caller's filter.
type Filter struct {
	FeedID  FeedID
	EntryID EntryID
	Verb    Verb
	Mention string

	// Count is the page size hint; zero requests feed metadata only.
	Count *int

	// Decrypt and Pass are set from the session, never by callers.
	Decrypt string
	Pass    string
}

func Count(n int) *int {
	return &n
}

func (f Filter) WithCount(n int) Filter {
	f.Count = Count(n)
	return f
}

func (f Filter) WithCredentials(decrypt, pass string) Filter {
	f.Decrypt = decrypt
	f.Pass = pass
	return f
}

// Path returns /pull/<feed>[/<entrySuffix>] with urn prefixes stripped.
// Slashes in the feed resource are sent as they are.
func (f Filter) Path() string {
	if f.FeedID.IsZero() {
		return PullPathPrefix
	}
	path := PullPathPrefix + pathEscaper.Replace(f.FeedID.Resource())
	if !f.EntryID.IsZero() {
		path += "/" + url.PathEscape(f.EntryID.Suffix())
	}
	return path
}

// Query returns the filter keys not encoded in the path.
func (f Filter) Query() url.Values {
	values := url.Values{}
	if f.Verb != VerbNone {
		values.Set("verb", f.Verb.String())
	}
	if f.Mention != "" {
		values.Set("mention", f.Mention)
	}
	if f.Count != nil {
		values.Set("count", strconv.Itoa(*f.Count))
	}
	if f.Decrypt != "" {
		values.Set("decrypt", f.Decrypt)
	}
	if f.Pass != "" {
		values.Set("pass", f.Pass)
	}
	return values
}

// RequestURI returns the path and query of the first page request.
func (f Filter) RequestURI() string {
	query := f.Query().Encode()
	if query == "" {
		return f.Path()
	}
	return f.Path() + "?" + query
}
