package extract

import (
	"net/url"
	"strings"
)

// DefaultFaviconTemplate asks the favicon service for a 128px icon and lets
// it fall back to a URL based icon. {url} is replaced by the site origin.
const DefaultFaviconTemplate = "https://t0.gstatic.com/faviconV2?client=SOCIAL&type=FAVICON&fallback_opts=TYPE,SIZE,URL&url={url}&size=128"

// SiteOrigin reduces raw to scheme://host. It returns "" when raw does not
// parse or lacks a scheme or host.
func SiteOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// FaviconURL fills template with the escaped origin. An empty template
// falls back to DefaultFaviconTemplate.
func FaviconURL(origin string, template string) string {
	if origin == "" {
		return ""
	}
	if template == "" {
		template = DefaultFaviconTemplate
	}
	return strings.ReplaceAll(template, "{url}", escapeKeepingSeparators(origin))
}

// escapeKeepingSeparators percent-encodes every byte of value except
// unreserved characters, ':' and '/'.
func escapeKeepingSeparators(value string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isUnreserved(c) || c == ':' || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return c == '-' || c == '_' || c == '.' || c == '~'
}

// LastPathSegment returns the final non-empty path segment of raw.
func LastPathSegment(raw string) string {
	path := raw
	if parsed, err := url.Parse(raw); err == nil {
		path = parsed.Path
	}
	path = strings.TrimRight(path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
