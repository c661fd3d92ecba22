package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/ui"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

// WritePostings renders a human readable listing of postings.
func WritePostings(w io.Writer, postings []models.Posting, format Format, opts WriteOptions) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, postings, ',')
	case FormatTSV:
		return writeCSV(w, postings, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, postings)
	default:
		return WriteTable(w, postings, opts)
	}
}

func writeCSV(w io.Writer, postings []models.Posting, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, posting := range postings {
		if err := writer.Write(csvRow(posting)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable prints source, title, company and url columns. Links become
// terminal hyperlinks when opts.Hyperlinks is set.
func WriteTable(w io.Writer, postings []models.Posting, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, posting := range postings {
		fmt.Fprintln(tw, strings.Join(tableRow(posting, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, postings []models.Posting) error {
	if len(postings) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, posting := range postings {
		urlLine := "  URL: -"
		if link := safe(posting.URL); link != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", link)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(posting.Title), orDash(posting.Company)),
			fmt.Sprintf("  Location: %s", orDash(posting.Location)),
			fmt.Sprintf("  Source: %s", safe(posting.Source)),
			urlLine,
		}
		if posting.EmploymentType != "" {
			lines = append(lines, fmt.Sprintf("  Type: %s", safe(posting.EmploymentType)))
		}
		if posting.Salary != "" {
			lines = append(lines, fmt.Sprintf("  Salary: %s", safe(posting.Salary)))
		}
		if posting.DatePosted != "" {
			lines = append(lines, fmt.Sprintf("  Posted: %s", safe(posting.DatePosted)))
		}
		if len(posting.Skills) > 0 {
			lines = append(lines, fmt.Sprintf("  Skills: %s", strings.Join(posting.Skills, ", ")))
		}
		if posting.ApplyURL != "" {
			lines = append(lines, fmt.Sprintf("  Apply: <%s>", safe(posting.ApplyURL)))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"source",
		"id",
		"title",
		"company",
		"location",
		"url",
		"employment_type",
		"salary",
		"skills",
		"date_posted",
		"apply_url",
		"dedupe_key",
	}
}

func csvRow(posting models.Posting) []string {
	return []string{
		posting.Source,
		posting.ID,
		posting.Title,
		posting.Company,
		posting.Location,
		posting.URL,
		posting.EmploymentType,
		posting.Salary,
		strings.Join(posting.Skills, ";"),
		posting.DatePosted,
		posting.ApplyURL,
		posting.DedupeKey(),
	}
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func orDash(value string) string {
	if value = safe(value); value == "" {
		return "-"
	}
	return value
}

func tableHeader() []string {
	return []string{
		"source",
		"title",
		"company",
		"url",
	}
}

func tableRow(posting models.Posting, output *termenv.Output, opts WriteOptions) []string {
	link := safe(posting.URL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		displayURL = ui.ColorizeLink(output, opts.ColorEnabled, displayURL)
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		safe(posting.Source),
		safe(posting.Title),
		orDash(posting.Company),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
