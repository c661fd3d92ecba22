package scraper

import (
	"context"

	"github.com/MrJJimenez/jobfeed/internal/models"
)

// Fetcher retrieves a remote document. network.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source turns one job site into postings.
type Source interface {
	Name() string
	URL() string
	Parse(ctx context.Context) ([]models.Posting, error)
}
