package feed

import (
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Post is a write against POST /post. Entry fields and feed fields can be
// sent together.
type Post struct {
	Verb    Verb
	URL     string
	Mention string

	Status  string
	Content string
	Tags    []string

	Title    string
	Subtitle string
	Base     string

	// Fields holds any other form fields the server understands.
	Fields map[string]string

	Attachments []Attachment
}

const (
	AttachmentField = "attach"
	IconField       = "icon"
	LogoField       = "logo"
)

type Attachment struct {
	Field    string
	Filename string
	Body     io.Reader
}

func NewVerbPost(verb Verb, url, mention string) Post {
	return Post{Verb: verb, URL: url, Mention: mention}
}

// FormFields returns the non-file form fields in a stable order.
func (p Post) FormFields() [][2]string {
	var fields [][2]string
	if p.Verb != VerbNone {
		fields = append(fields, [2]string{"verb", p.Verb.String()})
	}
	if p.URL != "" {
		fields = append(fields, [2]string{"url", p.URL})
	}
	if p.Mention != "" {
		fields = append(fields, [2]string{"mention", p.Mention})
	}
	if p.Title != "" {
		fields = append(fields, [2]string{"title", p.Title})
	}
	if p.Subtitle != "" {
		fields = append(fields, [2]string{"subtitle", p.Subtitle})
	}
	if p.Base != "" {
		fields = append(fields, [2]string{"base", p.Base})
	}
	if p.Status != "" {
		fields = append(fields, [2]string{"status", p.Status})
	}
	if p.Content != "" {
		fields = append(fields, [2]string{"content", p.Content})
	}
	for _, tag := range p.Tags {
		fields = append(fields, [2]string{"tag", tag})
	}
	keys := maps.Keys(p.Fields)
	slices.Sort(keys)
	for _, k := range keys {
		fields = append(fields, [2]string{k, p.Fields[k]})
	}
	return fields
}

// HasEntry reports whether the post publishes an entry rather than only
// updating the feed.
func (p Post) HasEntry() bool {
	if p.Status != "" || p.Content != "" || p.URL != "" {
		return true
	}
	for _, attachment := range p.Attachments {
		if attachment.Field == AttachmentField {
			return true
		}
	}
	return false
}
