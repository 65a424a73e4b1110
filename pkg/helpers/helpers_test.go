package helpers

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIsValidUrl(t *testing.T) {
	testCases := []struct {
		rawUrl        string
		expectedValid bool
	}{
		{
			rawUrl:        "hi/there?",
			expectedValid: false,
		},
		{
			rawUrl:        "http://golang.cafe/",
			expectedValid: true,
		},
		{
			rawUrl:        "http://golang.org/index.html?#page1",
			expectedValid: true,
		},
		{
			rawUrl:        "golang.org",
			expectedValid: false,
		},
		{
			rawUrl:        "https://golang.cafe/",
			expectedValid: true,
		},
		{
			rawUrl:        "wss://trsst.example",
			expectedValid: false,
		},
		{
			rawUrl:        "ftp://trsst.example",
			expectedValid: false,
		},
	}
	for _, tc := range testCases {
		isValid := IsValidHttpUrl(tc.rawUrl)
		if tc.expectedValid {
			assert.True(t, isValid)
		} else {
			assert.False(t, isValid)
		}
	}
}

func TestResolveReference(t *testing.T) {
	resolved, err := ResolveReference("http://localhost:8181/pull/abc?count=5", "/pull/abc?count=5&before=2")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8181/pull/abc?count=5&before=2", resolved)

	resolved, err = ResolveReference("http://localhost:8181/pull/abc", "https://other.example/pull/abc")
	assert.NoError(t, err)
	assert.Equal(t, "https://other.example/pull/abc", resolved)
}

func TestResolveContentURL(t *testing.T) {
	testCases := []struct {
		rawUrl   string
		xmlBase  string
		feed     string
		expected string
	}{
		{rawUrl: "https://cdn.example/a.png", feed: "abc", expected: "https://cdn.example/a.png"},
		{rawUrl: "/feed/abc/a.png", feed: "abc", expected: "/feed/abc/a.png"},
		{rawUrl: "a.png", feed: "abc", expected: "/feed/abc/a.png"},
		{rawUrl: "a.png", xmlBase: "https://host.example/files/", feed: "abc", expected: "https://host.example/files/a.png"},
		{rawUrl: "a.png", xmlBase: "media", feed: "abc", expected: "/feed/abc/media/a.png"},
		{rawUrl: "", feed: "abc", expected: ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ResolveContentURL(tc.rawUrl, tc.xmlBase, tc.feed))
	}
}
