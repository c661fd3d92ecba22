package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJJimenez/jobfeed/internal/dedupe"
	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/pipeline"
)

func sampleResult() pipeline.Result {
	return pipeline.Result{
		GeneratedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Sources:     []string{"https://www.python.org/jobs/feed/rss/", "https://builtwithdjango.com/jobs/"},
		Counts: pipeline.Counts{
			PythonOrg:       2,
			BuiltWithDjango: 1,
			Stats:           dedupe.Stats{InputCount: 3, OutputCount: 2, DuplicatesRemoved: 1},
		},
		Postings: []models.Posting{
			{
				ID:             "42",
				Title:          "Senior Django Developer @ Acme & Sons",
				Company:        "Acme & Sons",
				URL:            "https://builtwithdjango.com/jobs/42/senior-django-developer",
				Source:         models.SourceBuiltWithDjango,
				Location:       "Berlin, Germany",
				DatePosted:     "2024-01-04T10:00:00-05:00",
				Salary:         "$120,000 - $150,000",
				EmploymentType: "Full-time",
				Skills:         []string{"Django", "AWS"},
				Categories:     []string{"Django Job Board"},
				Summary:        "Build <things> with Django",
				FullOfferText:  "Build <things> with Django and AWS",
				FullOfferHTML:  "<p>Build &lt;things&gt; with Django and AWS</p>",
				ApplyURL:       "https://acme.example/apply?ref=bwd&x=1",
				CompanyURL:     "https://acme.example",
				ImageURL:       "https://t0.gstatic.com/faviconV2?url=https://acme.example",
			},
			{
				ID:            "backend-engineer",
				Title:         "Backend Engineer, Sparse Co",
				Company:       "Sparse Co",
				URL:           "https://www.python.org/jobs/7/",
				Source:        models.SourcePythonOrg,
				FullOfferText: "Short text",
			},
		},
	}
}

func TestWriteDocumentShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "2024-03-01T12:30:00Z", decoded["generated_at"])
	assert.Equal(t, []any{"https://www.python.org/jobs/feed/rss/", "https://builtwithdjango.com/jobs/"}, decoded["sources"])
	assert.Equal(t, map[string]any{
		"python_org":         float64(2),
		"builtwithdjango":    float64(1),
		"input_count":        float64(3),
		"output_count":       float64(2),
		"duplicates_removed": float64(1),
	}, decoded["counts"])

	jobs, ok := decoded["jobs"].([]any)
	require.True(t, ok)
	require.Len(t, jobs, 2)

	rich := jobs[0].(map[string]any)
	assert.Equal(t, "senior django developer|acme sons", rich["dedupe_key"])
	assert.Equal(t, []any{"Django", "AWS"}, rich["skills"])
	assert.Equal(t, "Build <things> with Django", rich["summary"])
	assert.Equal(t, "https://acme.example/apply?ref=bwd&x=1", rich["apply_url"])
}

func TestWriteDocumentKeepsAbsentFieldsAsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, sampleResult()))

	var decoded struct {
		Jobs []map[string]any `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	sparse := decoded.Jobs[1]

	for _, field := range []string{
		"location", "date_posted", "salary", "employment_type", "categories",
		"summary", "full_offer_html", "apply_url", "company_url", "image_url",
	} {
		value, present := sparse[field]
		assert.True(t, present, "field %s missing", field)
		assert.Nil(t, value, "field %s", field)
	}
	assert.Equal(t, []any{}, sparse["skills"])
	assert.Equal(t, "backend engineer|sparse co", sparse["dedupe_key"])
	assert.Len(t, sparse, 18)
}

func TestWriteDocumentWithoutPostings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, pipeline.Result{GeneratedAt: time.Unix(0, 0)}))

	assert.Contains(t, buf.String(), `"jobs": []`)
	assert.Contains(t, buf.String(), `"sources": []`)
	assert.Contains(t, buf.String(), `"generated_at": "1970-01-01T00:00:00Z"`)
}
