package models

import "github.com/MrJJimenez/jobfeed/internal/extract"

const (
	SourcePythonOrg       = "python.org"
	SourceBuiltWithDjango = "builtwithdjango.com"
)

// Posting is the normalized job record produced by a source adapter.
// Absent optional values are empty strings or nil slices.
type Posting struct {
	ID             string
	Title          string
	Company        string
	URL            string
	Source         string
	Location       string
	DatePosted     string
	Salary         string
	EmploymentType string
	Skills         []string
	Categories     []string
	Summary        string
	FullOfferText  string
	FullOfferHTML  string
	ApplyURL       string
	CompanyURL     string
	ImageURL       string
}

// DedupeKey is the cross-source identity of the posting.
func (p Posting) DedupeKey() string {
	return extract.Key(p.Title, p.Company)
}
