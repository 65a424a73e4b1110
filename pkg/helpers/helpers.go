package helpers

import (
	"net/url"
	"strings"
)

// DefaultFeedBase is where the server exposes feed content.
const DefaultFeedBase = "/feed"

func IsValidHttpUrl(rawUrl string) bool {
	parsedUrl, err := url.ParseRequestURI(rawUrl)
	if err != nil || parsedUrl == nil {
		return false
	}
	if (parsedUrl.Scheme != "http" && parsedUrl.Scheme != "https") || parsedUrl.Host == "" {
		return false
	}
	return true
}

// ResolveReference resolves ref against base. Absolute refs are returned
// as they are.
func ResolveReference(base string, ref string) (string, error) {
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refUrl, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseUrl.ResolveReference(refUrl).String(), nil
}

// ResolveContentURL resolves a content reference found in a feed. Relative
// references without an xml:base are served from <DefaultFeedBase>/<feed>/.
func ResolveContentURL(rawUrl string, xmlBase string, feedResource string) string {
	if rawUrl == "" || strings.HasPrefix(rawUrl, "http") || strings.HasPrefix(rawUrl, "/") {
		return rawUrl
	}

	if xmlBase != "" {
		rawUrl = strings.TrimSuffix(xmlBase, "/") + "/" + rawUrl
		if strings.HasPrefix(rawUrl, "http") || strings.HasPrefix(rawUrl, "/") {
			return rawUrl
		}
	}

	if feedResource != "" {
		rawUrl = feedResource + "/" + rawUrl
	}
	return DefaultFeedBase + "/" + rawUrl
}
