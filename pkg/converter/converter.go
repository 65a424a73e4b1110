package converter

import (
	"html"
	"log"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed/atom"
	"github.com/pkg/errors"
	"github.com/trsst/client/pkg/helpers"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const ellipsis = "…"

// TextConverter renders pulled feeds and entries as markdown-ish text for
// terminals and logs.
type TextConverter struct {
	maxContentLength int
	address          feed.Address
}

func NewTextConverter(maxContentLength int, address feed.Address) (*TextConverter, error) {
	if maxContentLength <= 0 {
		return nil, errors.New("max content length must be a positive number")
	}
	return &TextConverter{maxContentLength: maxContentLength, address: address}, nil
}

// Element renders entry, or the feed of page when entry is nil.
func (c *TextConverter) Element(page *feed.Page, entry *atom.Entry) string {
	if entry == nil {
		return c.ConvertFeed(page)
	}
	return c.ConvertEntry(page, entry)
}

func (c *TextConverter) ConvertFeed(page *feed.Page) string {
	resolve := c.resolver(feedResource(page))

	content := ""
	if page.Feed.Title != "" {
		content = "**" + page.Feed.Title + "**\n"
	}
	content += page.Feed.ID
	if id, err := page.FeedID(); err == nil && id.IsExternal() {
		content += " (external)"
	}

	subtitle := htmlToMarkdown(page.Feed.Subtitle, GetSummaryConverterRules(resolve))
	if subtitle != "" {
		content += "\n\n" + html.UnescapeString(subtitle)
	}

	if page.Feed.Icon != "" {
		content += "\n\n" + resolve(page.Feed.Icon)
	}

	return strings.ToValidUTF8(content, "")
}

func (c *TextConverter) ConvertEntry(page *feed.Page, entry *atom.Entry) string {
	resolve := c.resolver(feedResource(page))

	body := htmlToMarkdown(entryHTML(entry), GetEntryConverterRules(resolve))

	content := ""
	if entry.Title != "" && !strings.EqualFold(entry.Title, body) {
		content = "**" + entry.Title + "**"
	}
	if body != "" {
		if content != "" {
			content += "\n\n"
		}
		content += body
	}

	content = truncate(html.UnescapeString(content), c.maxContentLength)

	if entry.Content != nil && entry.Content.Src != "" {
		content += "\n\n" + resolve(entry.Content.Src)
	}

	content += "\n\n" + entry.ID
	if t := entryTime(entry); t != nil {
		content += " " + t.UTC().Format(time.RFC3339)
	}

	return strings.ToValidUTF8(content, "")
}

// resolver resolves content references the way the server serves them:
// relative to the feed, then against the server address. Ids are kept.
func (c *TextConverter) resolver(feedResource string) URLResolver {
	return func(ref string) string {
		if strings.HasPrefix(ref, "urn:") {
			return ref
		}
		ref = helpers.ResolveContentURL(ref, "", feedResource)
		resolved, err := helpers.ResolveReference(c.address.String()+"/", ref)
		if err != nil {
			log.Printf("[WARN] failed to resolve %q: %v", ref, err)
			return ref
		}
		return resolved
	}
}

func feedResource(page *feed.Page) string {
	id, err := page.FeedID()
	if err != nil {
		return ""
	}
	return id.Resource()
}

func entryHTML(entry *atom.Entry) string {
	if entry.Content != nil && entry.Content.Value != "" {
		return entry.Content.Value
	}
	return entry.Summary
}

func entryTime(entry *atom.Entry) *time.Time {
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed
	}
	return entry.PublishedParsed
}

func truncate(s string, maxLength int) string {
	runes := []rune(s)
	if maxLength <= 0 || len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength-1]) + ellipsis
}

func htmlToMarkdown(s string, converterRules []md.Rule) string {
	if s == "" {
		return ""
	}

	mdConverter := md.NewConverter("", true, nil)
	mdConverter.AddRules(converterRules...)

	convertedS, err := mdConverter.ConvertString(s)
	if err != nil {
		log.Printf("[WARN] failure to convert to markdown (defaulting to plain text): %v", err)
		p := bluemonday.StripTagsPolicy()
		convertedS = p.Sanitize(s)
	}

	return strings.TrimSpace(convertedS)
}
