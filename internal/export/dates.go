package export

import (
	"strings"
	"time"
)

var (
	feedLayouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC822Z,
		time.RFC822,
		"2 Jan 2006 15:04:05 -0700",
	}
	// Zone names RFC 822 defines. time.Parse gives unknown abbreviations a
	// zero offset, so they are rewritten to numeric offsets first.
	rfc822Zones = map[string]string{
		"UT":  "+0000",
		"UTC": "+0000",
		"GMT": "+0000",
		"Z":   "+0000",
		"EST": "-0500",
		"EDT": "-0400",
		"CST": "-0600",
		"CDT": "-0500",
		"MST": "-0700",
		"MDT": "-0600",
		"PST": "-0800",
		"PDT": "-0700",
	}
	isoLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// FeedDate renders a stored posting date in RSS form. Mail-style dates are
// tried before ISO-8601 ones, and now is used when neither parses. Values
// without a zone are taken as UTC.
func FeedDate(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if value != "" {
		if numeric, ok := numericZone(value); ok {
			if parsed, ok := parseWithLayouts(numeric, feedLayouts); ok {
				return parsed.Format(time.RFC1123Z)
			}
		}
		for _, layouts := range [][]string{feedLayouts, isoLayouts} {
			if parsed, ok := parseWithLayouts(value, layouts); ok {
				return parsed.Format(time.RFC1123Z)
			}
		}
	}
	return now.UTC().Format(time.RFC1123Z)
}

// numericZone replaces a trailing RFC 822 zone name with its offset.
func numericZone(value string) (string, bool) {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return "", false
	}
	offset, ok := rfc822Zones[strings.ToUpper(fields[len(fields)-1])]
	if !ok {
		return "", false
	}
	fields[len(fields)-1] = offset
	return strings.Join(fields, " "), true
}

// time.Parse already treats zone-less layouts as UTC.
func parseWithLayouts(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
