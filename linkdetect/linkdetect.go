// Package linkdetect recognizes link-like tokens in chat messages.
package linkdetect

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// matcher finds link-like substrings in text. Matchers run in a fixed
// order; new link formats are added by appending a matcher, existing
// ones stay untouched.
type matcher func(text string) []string

var (
	// Full URLs with a scheme, bare label(.label)+.tld domains with an
	// optional port and path, and www.-prefixed hosts.
	urlPattern = regexp.MustCompile(`(?i)` +
		`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+` +
		`|(?:(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+(?:[a-zA-Z]{2,}))(?::[0-9]{1,5})?(?:/[^\s]*)?` +
		`|www\.(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+(?:[a-zA-Z]{2,})(?::[0-9]{1,5})?(?:/[^\s]*)?`)

	telegramPattern = regexp.MustCompile(`(?i)t\.me/[a-zA-Z0-9_]+`)
	bitlyPattern    = regexp.MustCompile(`(?i)bit\.ly/[a-zA-Z0-9]+`)
	tinyurlPattern  = regexp.MustCompile(`(?i)tinyurl\.com/[a-zA-Z0-9]+`)

	// Common domains without a protocol. Anchored on start-of-text or
	// whitespace so hosts inside already-matched URLs are not re-reported.
	bareDomainPattern = regexp.MustCompile(
		`(?i)(?:^|\s)([a-zA-Z0-9-]+\.(?:com|org|net|edu|gov|co|io|me|tv|xyz|info|biz)(?:/[^\s]*)?)`)
)

func fullMatcher(re *regexp.Regexp) matcher {
	return func(text string) []string {
		return re.FindAllString(text, -1)
	}
}

func groupMatcher(re *regexp.Regexp) matcher {
	return func(text string) []string {
		var out []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
		return out
	}
}

// Detector extracts links from message text. The zero cost of its
// construction makes it safe to share or create per call.
type Detector struct {
	matchers []matcher
}

func New() *Detector {
	return &Detector{matchers: []matcher{
		fullMatcher(urlPattern),
		fullMatcher(telegramPattern),
		fullMatcher(bitlyPattern),
		fullMatcher(tinyurlPattern),
		groupMatcher(bareDomainPattern),
	}}
}

// ExtractLinks returns every link found in text, in first-occurrence
// order of the matcher cascade, deduplicated case-insensitively on the
// trimmed match. The first-seen casing wins.
func (d *Detector) ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}

	var links []string
	seen := map[string]bool{}
	for _, m := range d.matchers {
		for _, raw := range m(text) {
			l := strings.TrimSpace(raw)
			if l == "" {
				continue
			}
			key := strings.ToLower(l)
			if seen[key] {
				continue
			}
			seen[key] = true
			links = append(links, l)
		}
	}

	if len(links) > 0 {
		log.Debug().Int("count", len(links)).Strs("links", links).Msg("found links in message")
	}
	return links
}

// ContainsLinks reports whether text has at least one detectable link.
func (d *Detector) ContainsLinks(text string) bool {
	return len(d.ExtractLinks(text)) > 0
}

// suspiciousIndicators are substrings of shortener and throwaway-TLD
// hosts commonly seen in spam.
var suspiciousIndicators = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "t.co",
	".tk", ".ml", ".ga", ".cf",
	"bit.do", "cutt.ly", "short.link",
}

// IsSuspicious reports whether url contains a known shortener or
// throwaway-domain indicator. The restriction flow does not consult it;
// it is an extension point for stricter policies.
func IsSuspicious(url string) bool {
	lower := strings.ToLower(url)
	for _, ind := range suspiciousIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
