// Package links picks the application link and the company website out of
// noisy vacancy text.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// channelPostPattern matches t.me/<channel>/<message-id> and the private
	// t.me/c/<id>/<message-id> form.
	channelPostPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:t\.me|telegram\.me)/(?:c/)?[A-Za-z0-9_]+/\d+/?(?:[?#].*)?$`)
	telegramPattern    = regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:t\.me|telegram\.me)/`)
)

// ProfileBase is prepended to a bare @username to build a profile link.
const ProfileBase = "https://t.me/"

// IsAllowedURL reports whether raw parses as an http, https or tg URL.
func IsAllowedURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "tg":
		return u.Host != "" || u.Opaque != ""
	default:
		return false
	}
}

// IsWebURL reports whether raw parses as an http or https URL with a host.
func IsWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// IsTelegramScheme reports whether raw uses the tg:// scheme.
func IsTelegramScheme(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "tg:")
}

// IsChannelPost reports whether raw is a link to a broadcast post rather
// than to a person or an application page.
func IsChannelPost(raw string) bool {
	return channelPostPattern.MatchString(strings.TrimSpace(raw))
}

// ProfileURL turns "@name" or "name" into a profile link.
func ProfileURL(username string) string {
	return ProfileBase + strings.TrimPrefix(username, "@")
}

func isTelegramLink(raw string) bool {
	return telegramPattern.MatchString(raw)
}

// hostname returns the lower-cased host of raw without a leading "www.".
func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
