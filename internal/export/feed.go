package export

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/pipeline"
)

// FeedMeta describes the RSS channel.
type FeedMeta struct {
	Title       string
	Link        string
	Description string
}

// DefaultFeedMeta returns the channel used for the unified feed.
func DefaultFeedMeta() FeedMeta {
	return FeedMeta{
		Title:       "Django Jobs Unified Feed",
		Link:        "https://www.python.org/jobs/",
		Description: "Unified deduplicated Django jobs feed",
	}
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description string  `xml:"description"`
	Company     string  `xml:"company"`
	Location    string  `xml:"location"`
	Salary      string  `xml:"salary"`
	CompanyURL  string  `xml:"company_url"`
	ApplyURL    string  `xml:"apply_url"`
	ImageURL    string  `xml:"image_url"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// WriteFeed writes the merged postings as an RSS 2.0 document.
func WriteFeed(w io.Writer, result pipeline.Result, meta FeedMeta) error {
	now := result.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}

	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         meta.Title,
			Link:          meta.Link,
			Description:   meta.Description,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(result.Postings)),
		},
	}
	for _, posting := range result.Postings {
		doc.Channel.Items = append(doc.Channel.Items, newFeedItem(posting, now))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func newFeedItem(posting models.Posting, now time.Time) rssItem {
	guid := posting.DedupeKey()
	if guid == "" || guid == "|" {
		guid = posting.ID
	}
	description := posting.Summary
	if description == "" {
		description = posting.FullOfferText
	}
	return rssItem{
		Title:       posting.Title,
		Link:        posting.URL,
		GUID:        rssGUID{IsPermaLink: "false", Value: guid},
		PubDate:     FeedDate(posting.DatePosted, now),
		Description: description,
		Company:     posting.Company,
		Location:    posting.Location,
		Salary:      posting.Salary,
		CompanyURL:  posting.CompanyURL,
		ApplyURL:    posting.ApplyURL,
		ImageURL:    posting.ImageURL,
	}
}
