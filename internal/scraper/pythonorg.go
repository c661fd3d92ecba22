package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/MrJJimenez/jobfeed/internal/extract"
	"github.com/MrJJimenez/jobfeed/internal/models"
)

const (
	pythonOrgDescriptionStart = `<div class="job-description">`
	pythonOrgDescriptionEnd   = `<p class="job-meta"`
	pythonOrgArticleEnd       = `</article>`

	isoOffsetLayout = "2006-01-02T15:04:05-07:00"
)

// PythonOrg reads the python.org jobs RSS feed and enriches each matching
// entry from its detail page.
type PythonOrg struct {
	fetcher Fetcher
	feedURL string
	opts    Options
}

type feedEntry struct {
	Title       string
	Description string
	Link        string
	Published   string
	PublishedAt *time.Time
}

func NewPythonOrg(fetcher Fetcher, feedURL string, opts Options) *PythonOrg {
	return &PythonOrg{fetcher: fetcher, feedURL: feedURL, opts: opts.withDefaults()}
}

func (p *PythonOrg) Name() string {
	return models.SourcePythonOrg
}

func (p *PythonOrg) URL() string {
	return p.feedURL
}

func (p *PythonOrg) Parse(ctx context.Context) ([]models.Posting, error) {
	body, err := p.fetcher.Fetch(ctx, p.feedURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse feed: %w", p.Name(), err)
	}

	entries := matchingEntries(feed, p.opts.Keyword)
	p.opts.Logger.Debug().Str("site", p.Name()).Int("entries", len(feed.Items)).Int("matching", len(entries)).Msg("feed parsed")

	return collectDetails(ctx, p.opts, p.Name(), entries,
		func(entry feedEntry) string { return entry.Link },
		p.parseEntry,
	)
}

func (p *PythonOrg) parseEntry(ctx context.Context, entry feedEntry) (models.Posting, error) {
	p.opts.Logger.Debug().Str("url", entry.Link).Msg("fetch detail page")
	raw, doc, err := fetchPage(ctx, p.fetcher, entry.Link)
	if err != nil {
		return models.Posting{}, err
	}
	return parsePythonOrgDetail(entry, raw, doc, p.opts), nil
}

// matchingEntries keeps the feed items whose title or description mentions
// keyword.
func matchingEntries(feed *gofeed.Feed, keyword string) []feedEntry {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	var entries []feedEntry
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entry := feedEntry{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Link:        strings.TrimSpace(item.Link),
			Published:   strings.TrimSpace(item.Published),
			PublishedAt: item.PublishedParsed,
		}
		haystack := strings.ToLower(entry.Title + " " + entry.Description)
		if !strings.Contains(haystack, keyword) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func parsePythonOrgDetail(entry feedEntry, raw string, doc *goquery.Document, opts Options) models.Posting {
	opts = opts.withDefaults()

	fullHTML := pythonOrgDescription(raw)
	fullText := extract.PlainText(fullHTML)
	if fullHTML == "" {
		fullText = extract.PlainText(entry.Description)
	}

	datePosted := strings.TrimSpace(doc.Find("span.listing-posted time").First().AttrOr("datetime", ""))
	if datePosted == "" {
		datePosted = feedDate(entry)
	}

	website := pythonOrgWebsite(doc)
	applyURL := pythonOrgApplyLink(doc)
	siteLink := website
	if siteLink == "" {
		siteLink = applyURL
	}

	posting := models.Posting{
		Title:          entry.Title,
		Company:        companyAfterComma(entry.Title),
		URL:            entry.Link,
		Source:         models.SourcePythonOrg,
		Location:       cleanText(doc.Find("span.listing-location").First().Text()),
		DatePosted:     datePosted,
		Salary:         extract.Salary(fullText),
		EmploymentType: extract.EmploymentType(fullText),
		Skills:         opts.Skills.Match(fullText),
		Categories:     pythonOrgCategories(doc),
		FullOfferText:  fullText,
		FullOfferHTML:  fullHTML,
		ApplyURL:       applyURL,
		CompanyURL:     extract.SiteOrigin(siteLink),
	}
	return finishPosting(posting, opts)
}

// pythonOrgDescription cuts the raw job description markup out of the page.
func pythonOrgDescription(raw string) string {
	start := strings.Index(raw, pythonOrgDescriptionStart)
	if start < 0 {
		return ""
	}
	rest := raw[start:]
	if end := strings.Index(rest, pythonOrgDescriptionEnd); end >= 0 {
		return rest[:end]
	}
	if end := strings.Index(rest, pythonOrgArticleEnd); end >= 0 {
		return rest[:end]
	}
	return rest
}

func pythonOrgCategories(doc *goquery.Document) []string {
	var categories []string
	doc.Find("span.listing-company-category").Each(func(_ int, s *goquery.Selection) {
		if value := cleanText(s.Text()); value != "" {
			categories = append(categories, value)
		}
	})
	return categories
}

func pythonOrgWebsite(doc *goquery.Document) string {
	var link string
	doc.Find("li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if cleanText(s.Find("strong").First().Text()) != "Web" {
			return true
		}
		link = strings.TrimSpace(s.Find("a[href]").First().AttrOr("href", ""))
		return link == ""
	})
	return link
}

func pythonOrgApplyLink(doc *goquery.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.HasPrefix(strings.ToLower(cleanText(s.Text())), "apply") {
			return true
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			link = href
			return false
		}
		return true
	})
	return link
}

func feedDate(entry feedEntry) string {
	if entry.PublishedAt != nil {
		return entry.PublishedAt.Format(isoOffsetLayout)
	}
	return entry.Published
}

func companyAfterComma(title string) string {
	_, company, found := strings.Cut(title, ",")
	if !found {
		return ""
	}
	return strings.TrimSpace(company)
}
