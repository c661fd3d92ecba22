package export

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/pipeline"
)

func TestWriteFeedChannelAndItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, sampleResult(), DefaultFeedMeta()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, xml.Header))

	var decoded rssDocument
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.0", decoded.Version)
	assert.Equal(t, "Django Jobs Unified Feed", decoded.Channel.Title)
	assert.Equal(t, "https://www.python.org/jobs/", decoded.Channel.Link)
	assert.Equal(t, "Fri, 01 Mar 2024 12:30:00 +0000", decoded.Channel.LastBuildDate)
	require.Len(t, decoded.Channel.Items, 2)

	rich := decoded.Channel.Items[0]
	assert.Equal(t, "Senior Django Developer @ Acme & Sons", rich.Title)
	assert.Equal(t, rssGUID{IsPermaLink: "false", Value: "senior django developer|acme sons"}, rich.GUID)
	assert.Equal(t, "Thu, 04 Jan 2024 10:00:00 -0500", rich.PubDate)
	assert.Equal(t, "Build <things> with Django", rich.Description)
	assert.Equal(t, "Acme & Sons", rich.Company)
	assert.Equal(t, "https://acme.example/apply?ref=bwd&x=1", rich.ApplyURL)
	assert.Equal(t, "https://acme.example", rich.CompanyURL)

	sparse := decoded.Channel.Items[1]
	assert.Equal(t, "Short text", sparse.Description)
	assert.Equal(t, "Fri, 01 Mar 2024 12:30:00 +0000", sparse.PubDate)
	assert.Empty(t, sparse.Salary)
}

func TestWriteFeedEscapesMarkup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, sampleResult(), DefaultFeedMeta()))

	out := buf.String()
	assert.Contains(t, out, "Acme &amp; Sons")
	assert.Contains(t, out, "Build &lt;things&gt; with Django")
	assert.Contains(t, out, "ref=bwd&amp;x=1")
	assert.NotContains(t, out, "<things>")
}

func TestWriteFeedReadableByFeedParser(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, sampleResult(), DefaultFeedMeta()))

	feed, err := gofeed.NewParser().ParseString(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "Unified deduplicated Django jobs feed", feed.Description)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "https://builtwithdjango.com/jobs/42/senior-django-developer", feed.Items[0].Link)
	assert.Equal(t, "backend engineer|sparse co", feed.Items[1].GUID)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.Equal(t, 2024, feed.Items[0].PublishedParsed.Year())
}

func TestWriteFeedGUIDFallsBackToID(t *testing.T) {
	result := pipeline.Result{Postings: []models.Posting{{ID: "7"}}}
	item := newFeedItem(result.Postings[0], sampleResult().GeneratedAt)
	assert.Equal(t, "7", item.GUID.Value)
}
