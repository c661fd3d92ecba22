package scraper

import (
	"github.com/MrJJimenez/jobfeed/internal/network"
)

const (
	DefaultFeedURL    = "https://www.python.org/jobs/feed/rss/"
	DefaultListingURL = "https://builtwithdjango.com/jobs/"
)

// Registry returns the configured sources in merge order.
func Registry(client *network.Client, feedURL, listingURL string, opts Options) []Source {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if listingURL == "" {
		listingURL = DefaultListingURL
	}
	return []Source{
		NewPythonOrg(client, feedURL, opts),
		NewBuiltWithDjango(client, listingURL, opts),
	}
}
