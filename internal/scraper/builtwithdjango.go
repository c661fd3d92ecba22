package scraper

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrJJimenez/jobfeed/internal/extract"
	"github.com/MrJJimenez/jobfeed/internal/models"
)

const (
	builtWithDjangoCategory = "Django Job Board"
	builtWithDjangoApply    = "Apply for this position"
)

var (
	builtWithDjangoJobPath  = regexp.MustCompile(`^/jobs/\d+/.+`)
	builtWithDjangoLocation = regexp.MustCompile(`(?is)Location:\s*</b>\s*(.*?)\s*</p>`)
	builtWithDjangoSalary   = regexp.MustCompile(`(?is)Salary:\s*</b>\s*(.*?)\s*</p>`)
	builtWithDjangoPosted   = regexp.MustCompile(`(?is)Job Posted:\s*<b>(.*?)</b>`)
)

// BuiltWithDjango scrapes the builtwithdjango.com job board: the listing page
// for detail links, then every detail page.
type BuiltWithDjango struct {
	fetcher    Fetcher
	listingURL string
	opts       Options
}

func NewBuiltWithDjango(fetcher Fetcher, listingURL string, opts Options) *BuiltWithDjango {
	return &BuiltWithDjango{fetcher: fetcher, listingURL: listingURL, opts: opts.withDefaults()}
}

func (b *BuiltWithDjango) Name() string {
	return models.SourceBuiltWithDjango
}

func (b *BuiltWithDjango) URL() string {
	return b.listingURL
}

func (b *BuiltWithDjango) Parse(ctx context.Context) ([]models.Posting, error) {
	_, doc, err := fetchPage(ctx, b.fetcher, b.listingURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	links := builtWithDjangoLinks(doc, b.listingURL)
	b.opts.Logger.Debug().Str("site", b.Name()).Int("links", len(links)).Msg("listing parsed")

	return collectDetails(ctx, b.opts, b.Name(), links,
		func(link string) string { return link },
		b.parseDetail,
	)
}

func (b *BuiltWithDjango) parseDetail(ctx context.Context, link string) (models.Posting, error) {
	b.opts.Logger.Debug().Str("url", link).Msg("fetch detail page")
	raw, doc, err := fetchPage(ctx, b.fetcher, link)
	if err != nil {
		return models.Posting{}, err
	}
	return parseBuiltWithDjangoDetail(link, raw, doc, b.opts), nil
}

// builtWithDjangoLinks returns the unique detail page URLs of the listing,
// sorted so every run visits them in the same order.
func builtWithDjangoLinks(doc *goquery.Document, base string) []string {
	unique := map[string]struct{}{}
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !builtWithDjangoJobPath.MatchString(href) {
			return
		}
		unique[href] = struct{}{}
	})

	hrefs := make([]string, 0, len(unique))
	for href := range unique {
		hrefs = append(hrefs, href)
	}
	sort.Strings(hrefs)

	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		links = append(links, absoluteURL(base, href))
	}
	return links
}

func parseBuiltWithDjangoDetail(link string, raw string, doc *goquery.Document, opts Options) models.Posting {
	opts = opts.withDefaults()

	title := cleanText(doc.Find("h1.text-center").First().Text())
	company := companyAfterAt(title)

	var fullHTML string
	if body := doc.Find("div.prose").First(); body.Length() > 0 {
		fullHTML, _ = body.Html()
		fullHTML = strings.TrimSpace(fullHTML)
	}
	fullText := extract.PlainText(fullHTML)

	location := labelValue(builtWithDjangoLocation, raw)
	datePosted := labelValue(builtWithDjangoPosted, raw)
	var salary string
	if value := labelValue(builtWithDjangoSalary, raw); value != "" {
		salary = extract.Salary(value)
	}
	applyURL := builtWithDjangoApplyLink(doc)
	employment := extract.EmploymentType(fullText)

	ld := parseJobPostingLD(doc)
	applyURL = firstNonEmpty(ld.URL, applyURL)
	company = firstNonEmpty(ld.Company, company)
	location = firstNonEmpty(ld.Location, location)
	datePosted = firstNonEmpty(ld.DatePosted, datePosted)
	employment = firstNonEmpty(ld.EmploymentType, employment)

	posting := models.Posting{
		Title:          title,
		Company:        company,
		URL:            link,
		Source:         models.SourceBuiltWithDjango,
		Location:       location,
		DatePosted:     datePosted,
		Salary:         salary,
		EmploymentType: employment,
		Skills:         opts.Skills.Match(title + "\n" + fullText),
		Categories:     []string{builtWithDjangoCategory},
		FullOfferText:  fullText,
		FullOfferHTML:  fullHTML,
		ApplyURL:       applyURL,
		CompanyURL:     extract.SiteOrigin(applyURL),
	}
	return finishPosting(posting, opts)
}

func builtWithDjangoApplyLink(doc *goquery.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if cleanText(s.Text()) != builtWithDjangoApply {
			return true
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return true
		}
		link = href
		return false
	})
	return link
}

// labelValue returns the plain text captured by pattern's first group.
func labelValue(pattern *regexp.Regexp, raw string) string {
	match := pattern.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	return extract.PlainText(match[1])
}

func companyAfterAt(title string) string {
	_, company, found := strings.Cut(title, "@")
	if !found {
		return ""
	}
	return strings.TrimSpace(company)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
