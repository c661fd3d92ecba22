package models

import "time"

// FetchConfig contains runtime options for the document fetcher. Proxies,
// when set, are rotated round-robin across requests.
type FetchConfig struct {
	Proxies   []string
	Timeout   time.Duration
	UserAgent string
}
