package linkdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinksEmpty(t *testing.T) {
	assert := assert.New(t)
	d := New()

	assert.Empty(d.ExtractLinks(""))
	assert.Empty(d.ExtractLinks("just a plain sentence with no urls"))
	assert.False(d.ContainsLinks("nothing to see"))
}

func TestExtractLinksPatterns(t *testing.T) {
	d := New()

	cases := []struct {
		text string
		want []string
	}{
		{"visit https://example.com/page?q=1 now", []string{"https://example.com/page?q=1"}},
		{"plain http://example.org", []string{"http://example.org"}},
		{"bare domain example.com here", []string{"example.com"}},
		{"with port example.com:8080/admin", []string{"example.com:8080/admin"}},
		{"prefixed www.example.org/path", []string{"www.example.org/path"}},
		{"join t.me/somechannel today", []string{"t.me/somechannel"}},
		{"short bit.ly/abc123 link", []string{"bit.ly/abc123"}},
		{"another tinyurl.com/xyz one", []string{"tinyurl.com/xyz"}},
		{"multi a.io and b.tv", []string{"a.io", "b.tv"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, d.ExtractLinks(tc.text), "text: %q", tc.text)
	}
}

func TestExtractLinksDeduplicatesCaseInsensitively(t *testing.T) {
	assert := assert.New(t)
	d := New()

	links := d.ExtractLinks("http://a.com http://A.com")
	assert.Equal([]string{"http://a.com"}, links)

	// First-seen casing wins even across matchers.
	links = d.ExtractLinks("T.me/Chan t.me/chan")
	assert.Equal([]string{"T.me/Chan"}, links)
}

func TestExtractLinksDeterministic(t *testing.T) {
	assert := assert.New(t)
	d := New()

	text := "check t.me/foo and http://x.com plus example.org"
	first := d.ExtractLinks(text)
	second := d.ExtractLinks(text)
	assert.Equal(first, second)
	assert.NotEmpty(first)
}

func TestExtractLinksOrderPreserved(t *testing.T) {
	assert := assert.New(t)
	d := New()

	// The primary pattern already matches the t.me reference; the
	// supplementary matcher's duplicate is dropped.
	links := d.ExtractLinks("check t.me/foo and http://x.com")
	assert.Equal([]string{"t.me/foo", "http://x.com"}, links)
}

func TestIsSuspicious(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsSuspicious("https://bit.ly/abc"))
	assert.True(IsSuspicious("HTTP://TINYURL.COM/xyz"))
	assert.True(IsSuspicious("http://free-stuff.tk"))
	assert.True(IsSuspicious("cutt.ly/deal"))
	assert.False(IsSuspicious("https://example.com"))
	assert.False(IsSuspicious("t.me/somechannel"))
}
