package scraper

import (
	"context"
	"strings"
	"testing"
)

const builtWithDjangoListing = `<html><body>
<a href="/jobs/12/senior-django-developer">Senior Django Developer</a>
<a href="/jobs/9/backend-engineer">Backend Engineer</a>
<a href="/jobs/12/senior-django-developer">Senior Django Developer (again)</a>
<a href="/jobs/">All jobs</a>
<a href="/jobs/new/post">Post a job</a>
<a href="https://elsewhere.example/jobs/1/x">External</a>
</body></html>`

const builtWithDjangoDetailLD = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org/",
  "@type": "JobPosting",
  "title": "Senior Django Developer",
  "url": "https://careers.acme.example/jobs/42",
  "hiringOrganization": {"@type": "Organization", "name": "Acme Corp"},
  "jobLocation": {"@type": "Place", "address": "Remote (US)"},
  "datePosted": "2024-02-01",
  "employmentType": "FULL_TIME"
}
</script>
</head><body>
<h1 class="text-center">
  Senior Django Developer @ Acme
</h1>
<p><b>Location:</b> New York</p>
<p><b>Salary:</b> $140k - $170k</p>
<p>Job Posted: <b>Feb. 1, 2024</b></p>
<div class="prose md:prose-lg">
  <p>Part-time is not an option. We build REST APIs with Django &amp; Python.</p>
</div>
<a href="https://acme.example/apply">Apply for this position</a>
</body></html>`

const builtWithDjangoDetailMarkupOnly = `<html><head>
<script type="application/ld+json">{"url": "https://broken.example", </script>
</head><body>
<h1 class="text-center">Backend Engineer @ Beta</h1>
<p><b>Location:</b>
   Lisbon, <i>Portugal</i></p>
<p>Job Posted: <b>Jan. 9, 2024</b></p>
<div class="prose md:prose-lg"><p>Contract role, Kubernetes and Docker.</p></div>
<a href="https://beta.example/jobs/apply?id=9">Apply for this position</a>
</body></html>`

func TestBuiltWithDjangoLinksAreSortedAndUnique(t *testing.T) {
	doc := mustDoc(t, builtWithDjangoListing)
	got := builtWithDjangoLinks(doc, "https://builtwithdjango.com/jobs/")
	want := []string{
		"https://builtwithdjango.com/jobs/12/senior-django-developer",
		"https://builtwithdjango.com/jobs/9/backend-engineer",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("builtWithDjangoLinks() = %v, want %v", got, want)
	}
}

func TestBuiltWithDjangoParse(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://builtwithdjango.com/jobs/":                           builtWithDjangoListing,
		"https://builtwithdjango.com/jobs/12/senior-django-developer": builtWithDjangoDetailLD,
		"https://builtwithdjango.com/jobs/9/backend-engineer":         builtWithDjangoDetailMarkupOnly,
	}}

	source := NewBuiltWithDjango(fetcher, "https://builtwithdjango.com/jobs/", testOptions())
	postings, err := source.Parse(context.Background())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	ld := postings[0]
	if ld.ID != "senior-django-developer" || ld.Source != "builtwithdjango.com" {
		t.Fatalf("unexpected identity: %+v", ld)
	}
	if ld.Title != "Senior Django Developer @ Acme" {
		t.Fatalf("unexpected title: %q", ld.Title)
	}
	if ld.Company != "Acme Corp" {
		t.Fatalf("structured company should win, got %q", ld.Company)
	}
	if ld.Location != "Remote (US)" {
		t.Fatalf("structured location should win, got %q", ld.Location)
	}
	if ld.DatePosted != "2024-02-01" {
		t.Fatalf("structured date should win, got %q", ld.DatePosted)
	}
	if ld.EmploymentType != "FULL_TIME" {
		t.Fatalf("structured employment type should win, got %q", ld.EmploymentType)
	}
	if ld.ApplyURL != "https://careers.acme.example/jobs/42" || ld.CompanyURL != "https://careers.acme.example" {
		t.Fatalf("structured url should win, got apply=%q company=%q", ld.ApplyURL, ld.CompanyURL)
	}
	if ld.Salary != "$140k - $170k" {
		t.Fatalf("unexpected salary: %q", ld.Salary)
	}
	if strings.Join(ld.Skills, ",") != "Django,Python,REST,API" {
		t.Fatalf("unexpected skills: %v", ld.Skills)
	}
	if len(ld.Categories) != 1 || ld.Categories[0] != "Django Job Board" {
		t.Fatalf("unexpected categories: %v", ld.Categories)
	}
	if ld.FullOfferText != "Part-time is not an option. We build REST APIs with Django & Python." {
		t.Fatalf("unexpected offer text: %q", ld.FullOfferText)
	}
	if !strings.Contains(ld.FullOfferHTML, "<p>Part-time") {
		t.Fatalf("unexpected offer html: %q", ld.FullOfferHTML)
	}
	if ld.ImageURL == "" {
		t.Fatalf("expected image url for company url %q", ld.CompanyURL)
	}

	markup := postings[1]
	if markup.Company != "Beta" {
		t.Fatalf("expected company from title, got %q", markup.Company)
	}
	if markup.Location != "Lisbon, Portugal" {
		t.Fatalf("unexpected location: %q", markup.Location)
	}
	if markup.DatePosted != "Jan. 9, 2024" {
		t.Fatalf("unexpected date: %q", markup.DatePosted)
	}
	if markup.Salary != "" {
		t.Fatalf("expected no salary, got %q", markup.Salary)
	}
	if markup.EmploymentType != "Contract" {
		t.Fatalf("expected heuristic employment type, got %q", markup.EmploymentType)
	}
	if markup.ApplyURL != "https://beta.example/jobs/apply?id=9" || markup.CompanyURL != "https://beta.example" {
		t.Fatalf("unexpected links: apply=%q company=%q", markup.ApplyURL, markup.CompanyURL)
	}
}

func TestBuiltWithDjangoSkipsBrokenDetailPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://builtwithdjango.com/jobs/":                   builtWithDjangoListing,
		"https://builtwithdjango.com/jobs/9/backend-engineer": builtWithDjangoDetailMarkupOnly,
	}}

	source := NewBuiltWithDjango(fetcher, "https://builtwithdjango.com/jobs/", testOptions())
	postings, err := source.Parse(context.Background())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(postings) != 1 || postings[0].Company != "Beta" {
		t.Fatalf("expected only the reachable posting, got %+v", postings)
	}

	opts := testOptions()
	opts.Strict = true
	strict := NewBuiltWithDjango(fetcher, "https://builtwithdjango.com/jobs/", opts)
	if _, err := strict.Parse(context.Background()); err == nil {
		t.Fatalf("expected strict mode to fail on the missing detail page")
	}
}

func TestCompanyAfterAt(t *testing.T) {
	if got := companyAfterAt("Engineer @ Acme"); got != "Acme" {
		t.Fatalf("companyAfterAt() = %q", got)
	}
	if got := companyAfterAt("Engineer"); got != "" {
		t.Fatalf("companyAfterAt() = %q, want empty", got)
	}
}
