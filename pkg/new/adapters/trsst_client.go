package adapters

import (
	"bytes"
	"context"
	"io"
	"log"
	"mime/multipart"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/atom"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trsst/client/pkg/helpers"
	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const (
	postPath    = "/post"
	servicePath = helpers.DefaultFeedBase + "/service"
)

var (
	// ErrMalformedPage means the server answered but the body is not a feed.
	ErrMalformedPage = errors.New("malformed page")

	// ErrAuthentication means a post was answered with something other
	// than the resulting feed.
	ErrAuthentication = errors.New("authentication failed")
)

// TrsstClient speaks the trsst server's HTTP surface.
type TrsstClient struct {
	address    feed.Address
	downloader *Downloader
}

func NewTrsstClient(address feed.Address, downloader *Downloader) *TrsstClient {
	return &TrsstClient{address: address, downloader: downloader}
}

func (c *TrsstClient) URL(requestURI string) string {
	return c.address.String() + requestURI
}

// FetchPage downloads and parses one page. Relative next links are
// resolved against the page url.
func (c *TrsstClient) FetchPage(ctx context.Context, url string) (*feed.Page, error) {
	body, err := c.downloader.Download(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "error downloading '%s'", url)
	}
	defer body.Close()

	parsed, err := parseFeed(body)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedPage, "error parsing '%s': %s", url, err)
	}

	page := feed.NewPage(parsed)
	if page.Next != "" {
		next, err := helpers.ResolveReference(url, page.Next)
		if err != nil {
			log.Printf("[WARN] ignoring invalid next link %q on '%s': %v", page.Next, url, err)
			next = ""
		}
		page.Next = next
	}

	return page, nil
}

// Post sends a write to the server. A zero id creates a new feed.
func (c *TrsstClient) Post(ctx context.Context, id feed.FeedID, password domain.Password, post feed.Post) (*feed.Page, error) {
	metrics.PostRequests.Inc()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writePostForm(writer, id, password, post); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "POST_FORM"}).Inc()
		return nil, errors.Wrap(err, "error building the post form")
	}

	body, err := c.downloader.Upload(ctx, c.URL(postPath), writer.FormDataContentType(), &buf)
	if err != nil {
		metrics.PostErrors.Inc()
		var statusErr StatusError
		if errors.As(err, &statusErr) {
			return nil, errors.Wrap(ErrAuthentication, statusErr.Error())
		}
		return nil, errors.Wrap(err, "error posting")
	}
	defer body.Close()

	parsed, err := parseFeed(body)
	if err != nil {
		metrics.PostErrors.Inc()
		return nil, errors.Wrapf(ErrAuthentication, "unexpected post response: %s", err)
	}

	page := feed.NewPage(parsed)
	if _, err := page.FeedID(); err != nil {
		metrics.PostErrors.Inc()
		return nil, errors.Wrap(ErrAuthentication, err.Error())
	}

	return page, nil
}

// Accounts lists the accounts hosted by the server.
func (c *TrsstClient) Accounts(ctx context.Context) ([]feed.FeedID, error) {
	body, err := c.downloader.Download(ctx, c.URL(servicePath))
	if err != nil {
		return nil, errors.Wrap(err, "error downloading the service document")
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing the service document")
	}

	var accounts []feed.FeedID
	doc.Find("collection").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok {
			return
		}
		// hrefs are relative and not in urn form
		id, err := feed.NewFeedID(href)
		if err != nil {
			log.Printf("[WARN] skipping collection with href %q: %v", href, err)
			return
		}
		accounts = append(accounts, id)
	})

	return accounts, nil
}

func writePostForm(writer *multipart.Writer, id feed.FeedID, password domain.Password, post feed.Post) error {
	if !id.IsZero() {
		if err := writer.WriteField("id", id.String()); err != nil {
			return err
		}
	}
	if !password.IsZero() {
		if err := writer.WriteField("pass", password.String()); err != nil {
			return err
		}
	}
	for _, field := range post.FormFields() {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}
	for _, attachment := range post.Attachments {
		part, err := writer.CreateFormFile(attachment.Field, attachment.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, attachment.Body); err != nil {
			return errors.Wrapf(err, "error attaching '%s'", attachment.Filename)
		}
	}
	return writer.Close()
}

func parseFeed(body io.Reader) (*atom.Feed, error) {
	parser := &atom.Parser{}
	return parser.Parse(body)
}
