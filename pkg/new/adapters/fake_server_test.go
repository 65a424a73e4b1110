package adapters_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trsst/client/pkg/new/adapters"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const feedTemplate = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<id>urn:feed:%s</id>
<title>%s</title>
<updated>2014-03-01T12:00:00Z</updated>
%s
%s
</feed>`

const entryTemplate = `<entry>
<id>urn:entry:%s:%s</id>
<title>entry %s</title>
<updated>2014-03-01T12:00:00Z</updated>
<content src="%s"/>
</entry>`

func atomFeed(feedResource string, next string, entries ...string) string {
	link := ""
	if next != "" {
		link = fmt.Sprintf(`<link rel="next" href="%s"/>`, next)
	}
	return fmt.Sprintf(feedTemplate, feedResource, feedResource, link, strings.Join(entries, "\n"))
}

func atomEntry(feedResource string, suffix string, src string) string {
	return fmt.Sprintf(entryTemplate, feedResource, suffix, suffix, src)
}

type nextFunc func(server *pagedServer, page int) string

// pagedServer serves /pull/<feed>?page=N for pages 1..pages, each linking
// to the next one unless next says otherwise.
type pagedServer struct {
	*httptest.Server

	pages int
	next  nextFunc

	lock     sync.Mutex
	requests []string
}

func newPagedServer(t *testing.T, pages int, next nextFunc) *pagedServer {
	if next == nil {
		next = func(server *pagedServer, page int) string {
			if page >= server.pages {
				return ""
			}
			return fmt.Sprintf("%s/pull/abc?page=%d", server.URL, page+1)
		}
	}
	s := &pagedServer{pages: pages, next: next}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.lock.Unlock()

		if r.URL.Path != "/pull/abc" {
			http.NotFound(w, r)
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = fmt.Fprint(w, atomFeed("abc", s.next(s, page), atomEntry("abc", strconv.Itoa(page), "")))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *pagedServer) Requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.requests...)
}

func newTestClient(t *testing.T, url string) *adapters.TrsstClient {
	address, err := feed.NewAddress(url)
	require.NoError(t, err)
	return adapters.NewTrsstClient(address, adapters.NewDownloader(5*time.Second))
}
