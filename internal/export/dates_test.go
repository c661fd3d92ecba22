package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	nowRendered := "Fri, 01 Mar 2024 12:30:00 +0000"

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"rfc1123z", "Thu, 04 Jan 2024 10:00:00 +0000", "Thu, 04 Jan 2024 10:00:00 +0000"},
		{"single digit day", "Thu, 4 Jan 2024 10:00:00 +0100", "Thu, 04 Jan 2024 10:00:00 +0100"},
		{"named zone", "Thu, 04 Jan 2024 10:00:00 GMT", "Thu, 04 Jan 2024 10:00:00 +0000"},
		{"rfc822 eastern", "Tue, 02 Jan 2024 10:00:00 EST", "Tue, 02 Jan 2024 10:00:00 -0500"},
		{"rfc822 pacific daylight", "Tue, 2 Jul 2024 10:00:00 PDT", "Tue, 02 Jul 2024 10:00:00 -0700"},
		{"rfc822 universal", "Tue, 02 Jan 2024 10:00:00 UT", "Tue, 02 Jan 2024 10:00:00 +0000"},
		{"rfc822 without weekday", "02 Jan 2024 10:00:00 CDT", "Tue, 02 Jan 2024 10:00:00 -0500"},
		{"iso with offset", "2024-01-04T10:00:00-05:00", "Thu, 04 Jan 2024 10:00:00 -0500"},
		{"iso utc", "2024-01-04T10:00:00Z", "Thu, 04 Jan 2024 10:00:00 +0000"},
		{"iso fractional", "2024-01-04T10:00:00.123456+02:00", "Thu, 04 Jan 2024 10:00:00 +0200"},
		{"iso without zone", "2024-01-04T10:00:00", "Thu, 04 Jan 2024 10:00:00 +0000"},
		{"date only", "2024-01-04", "Thu, 04 Jan 2024 00:00:00 +0000"},
		{"padded", "  2024-01-04  ", "Thu, 04 Jan 2024 00:00:00 +0000"},
		{"unparseable", "Jan. 4, 2024", nowRendered},
		{"empty", "", nowRendered},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FeedDate(tc.input, now))
		})
	}
}

func TestFeedDateUsesUTCForNow(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	now := time.Date(2024, 3, 1, 13, 30, 0, 0, zone)

	assert.Equal(t, "Fri, 01 Mar 2024 12:30:00 +0000", FeedDate("soon", now))
}
