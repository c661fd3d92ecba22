package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/pipeline"
)

type document struct {
	GeneratedAt string          `json:"generated_at"`
	Sources     []string        `json:"sources"`
	Counts      pipeline.Counts `json:"counts"`
	Jobs        []jobRecord     `json:"jobs"`
}

// jobRecord keeps every posting field in the output, null when absent.
type jobRecord struct {
	ID             *string  `json:"id"`
	Title          *string  `json:"title"`
	Company        *string  `json:"company"`
	URL            *string  `json:"url"`
	Source         *string  `json:"source"`
	Location       *string  `json:"location"`
	DatePosted     *string  `json:"date_posted"`
	Salary         *string  `json:"salary"`
	EmploymentType *string  `json:"employment_type"`
	Skills         []string `json:"skills"`
	Categories     []string `json:"categories"`
	Summary        *string  `json:"summary"`
	FullOfferText  *string  `json:"full_offer_text"`
	FullOfferHTML  *string  `json:"full_offer_html"`
	ApplyURL       *string  `json:"apply_url"`
	CompanyURL     *string  `json:"company_url"`
	ImageURL       *string  `json:"image_url"`
	DedupeKey      string   `json:"dedupe_key"`
}

// WriteDocument writes the merged result as an indented JSON document.
func WriteDocument(w io.Writer, result pipeline.Result) error {
	doc := document{
		GeneratedAt: result.GeneratedAt.UTC().Format(time.RFC3339),
		Sources:     result.Sources,
		Counts:      result.Counts,
		Jobs:        make([]jobRecord, 0, len(result.Postings)),
	}
	if doc.Sources == nil {
		doc.Sources = []string{}
	}
	for _, posting := range result.Postings {
		doc.Jobs = append(doc.Jobs, newJobRecord(posting))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}

func newJobRecord(posting models.Posting) jobRecord {
	skills := posting.Skills
	if skills == nil {
		skills = []string{}
	}
	var categories []string
	if len(posting.Categories) > 0 {
		categories = posting.Categories
	}
	return jobRecord{
		ID:             nullable(posting.ID),
		Title:          nullable(posting.Title),
		Company:        nullable(posting.Company),
		URL:            nullable(posting.URL),
		Source:         nullable(posting.Source),
		Location:       nullable(posting.Location),
		DatePosted:     nullable(posting.DatePosted),
		Salary:         nullable(posting.Salary),
		EmploymentType: nullable(posting.EmploymentType),
		Skills:         skills,
		Categories:     categories,
		Summary:        nullable(posting.Summary),
		FullOfferText:  nullable(posting.FullOfferText),
		FullOfferHTML:  nullable(posting.FullOfferHTML),
		ApplyURL:       nullable(posting.ApplyURL),
		CompanyURL:     nullable(posting.CompanyURL),
		ImageURL:       nullable(posting.ImageURL),
		DedupeKey:      posting.DedupeKey(),
	}
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
