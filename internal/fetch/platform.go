// Package fetch - platform.go provides detection of known social profile
// platforms and platform-specific post selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known social profile platform.
type Platform string

const (
	// PlatformMastodon is a Mastodon-compatible instance
	PlatformMastodon Platform = "mastodon"
	// PlatformNitter is a Nitter timeline mirror
	PlatformNitter Platform = "nitter"
	// PlatformBluesky is a Bluesky profile page
	PlatformBluesky Platform = "bluesky"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the profile platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if strings.Contains(host, "nitter") {
		return PlatformNitter
	}
	if strings.Contains(host, "bsky.app") {
		return PlatformBluesky
	}
	if strings.Contains(host, "mastodon") || strings.Contains(host, "mstdn") ||
		strings.Contains(host, "fosstodon") {
		return PlatformMastodon
	}

	return PlatformUnknown
}

// PlatformPostSelector returns the per-post selector for a platform's
// timeline page. Individual posts are extracted with ExtractAll rather
// than as one text blob so each becomes its own signal.
func PlatformPostSelector(platform Platform) string {
	switch platform {
	case PlatformNitter:
		return ".timeline-item .tweet-content"
	case PlatformBluesky:
		return "[data-testid='postText']"
	case PlatformMastodon:
		return ".status__content"
	default:
		return "article p, .post, .status"
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a platform's
// timeline page.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		".cookie-banner",
		".cookie-consent",
		".signup-banner",
		".login-prompt",
		".social-share",
	}

	switch platform {
	case PlatformNitter:
		return append(common, ".retweet-header", ".replying-to", ".tweet-stats")
	case PlatformMastodon:
		return append(common, ".status__prepend", ".status__action-bar")
	default:
		return common
	}
}
