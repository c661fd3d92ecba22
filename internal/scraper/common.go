package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/MrJJimenez/jobfeed/internal/extract"
	"github.com/MrJJimenez/jobfeed/internal/models"
)

const (
	DefaultKeyword = "django"
	DefaultWorkers = 4

	summaryLength = 500
)

// Options carries the tunables shared by all sources.
type Options struct {
	Keyword         string
	Skills          extract.Vocabulary
	FaviconTemplate string
	Workers         int
	// Strict aborts the whole source on the first failed detail page
	// instead of skipping that entry.
	Strict bool
	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Keyword) == "" {
		o.Keyword = DefaultKeyword
	}
	if len(o.Skills) == 0 {
		o.Skills = extract.DefaultVocabulary()
	}
	if o.FaviconTemplate == "" {
		o.FaviconTemplate = extract.DefaultFaviconTemplate
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

func fetchPage(ctx context.Context, fetcher Fetcher, target string) (string, *goquery.Document, error) {
	body, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return "", nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	return string(body), doc, nil
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// finishPosting fills the fields derived from others.
func finishPosting(p models.Posting, opts Options) models.Posting {
	if p.ID == "" {
		p.ID = extract.LastPathSegment(p.URL)
	}
	if p.FullOfferText != "" {
		p.Summary = extract.Truncate(p.FullOfferText, summaryLength)
	}
	p.ImageURL = extract.FaviconURL(p.CompanyURL, opts.FaviconTemplate)
	return p
}

// collectDetails runs parse for every item on a bounded pool of workers and
// returns the successful postings in item order.
func collectDetails[T any](ctx context.Context, opts Options, site string, items []T, describe func(T) string, parse func(context.Context, T) (models.Posting, error)) ([]models.Posting, error) {
	if len(items) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		results  = make([]models.Posting, len(items))
		ok       = make([]bool, len(items))
		indexes  = make(chan int)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				posting, err := parse(runCtx, items[idx])
				if err == nil {
					results[idx] = posting
					ok[idx] = true
					continue
				}
				if opts.Strict {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("%s: %s: %w", site, describe(items[idx]), err)
						cancel()
					}
					mu.Unlock()
					continue
				}
				opts.Logger.Warn().Err(err).Str("site", site).Str("entry", describe(items[idx])).Msg("skipping entry")
			}
		}()
	}

dispatch:
	for idx := range items {
		select {
		case indexes <- idx:
		case <-runCtx.Done():
			break dispatch
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	postings := make([]models.Posting, 0, len(items))
	for idx, posting := range results {
		if ok[idx] {
			postings = append(postings, posting)
		}
	}
	return postings, nil
}

// jobPostingData holds the schema.org JobPosting fields a detail page may
// embed as JSON-LD.
type jobPostingData struct {
	URL            string
	Company        string
	Location       string
	DatePosted     string
	EmploymentType string
}

// parseJobPostingLD decodes the first JSON-LD block of doc. A missing or
// malformed block yields the zero value.
func parseJobPostingLD(doc *goquery.Document) jobPostingData {
	raw := strings.TrimSpace(doc.Find("script[type='application/ld+json']").First().Text())
	if raw == "" {
		return jobPostingData{}
	}

	data, err := decodeJSONLD(raw)
	if err != nil {
		return jobPostingData{}
	}
	value, ok := data.(map[string]any)
	if !ok {
		return jobPostingData{}
	}

	return jobPostingData{
		URL:            stringValue(value["url"]),
		Company:        stringValue(mapValue(value["hiringOrganization"], "name")),
		Location:       locationFromJSONLD(value["jobLocation"]),
		DatePosted:     stringValue(value["datePosted"]),
		EmploymentType: employmentTypeFromJSONLD(value["employmentType"]),
	}
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "\u2028", "")
	raw = strings.ReplaceAll(raw, "\u2029", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func locationFromJSONLD(value any) string {
	switch v := value.(type) {
	case []any:
		var parts []string
		for _, item := range v {
			if loc := locationFromJSONLD(item); loc != "" {
				parts = append(parts, loc)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		switch address := v["address"].(type) {
		case map[string]any:
			return joinAddress(address)
		case string:
			return strings.TrimSpace(address)
		}
		return joinAddress(v)
	case string:
		return strings.TrimSpace(v)
	}
	return ""
}

func joinAddress(value map[string]any) string {
	parts := []string{
		stringValue(value["streetAddress"]),
		stringValue(value["addressLocality"]),
		stringValue(value["addressRegion"]),
		stringValue(value["postalCode"]),
		stringValue(value["addressCountry"]),
	}
	var cleaned []string
	for _, part := range parts {
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return strings.Join(cleaned, ", ")
}

func employmentTypeFromJSONLD(value any) string {
	list, ok := value.([]any)
	if !ok {
		return stringValue(value)
	}
	var parts []string
	for _, item := range list {
		if s := stringValue(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
