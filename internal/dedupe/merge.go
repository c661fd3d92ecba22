package dedupe

import (
	"unicode/utf8"

	"github.com/MrJJimenez/jobfeed/internal/models"
)

// Stats captures counts for a merge pass.
// OutputCount + DuplicatesRemoved always equals InputCount.
type Stats struct {
	InputCount        int `json:"input_count"`
	OutputCount       int `json:"output_count"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Score counts the populated enrichment fields of a posting.
func Score(p models.Posting) int {
	fields := []bool{
		p.Company != "",
		p.Location != "",
		p.DatePosted != "",
		p.Salary != "",
		p.EmploymentType != "",
		len(p.Skills) > 0,
		p.FullOfferText != "",
		p.ApplyURL != "",
		p.CompanyURL != "",
		p.ImageURL != "",
	}

	score := 0
	for _, set := range fields {
		if set {
			score++
		}
	}
	return score
}

// Merge keeps one posting per dedupe key.
// A later posting replaces the kept one only when it scores higher, or scores
// the same with a longer offer text. Groups keep the order they were first seen.
func Merge(postings []models.Posting) ([]models.Posting, Stats) {
	index := make(map[string]int, len(postings))
	out := make([]models.Posting, 0, len(postings))

	for _, posting := range postings {
		key := posting.DedupeKey()
		pos, exists := index[key]
		if !exists {
			index[key] = len(out)
			out = append(out, posting)
			continue
		}
		if richer(posting, out[pos]) {
			out[pos] = posting
		}
	}

	return out, Stats{
		InputCount:        len(postings),
		OutputCount:       len(out),
		DuplicatesRemoved: len(postings) - len(out),
	}
}

func richer(candidate, existing models.Posting) bool {
	candidateScore, existingScore := Score(candidate), Score(existing)
	if candidateScore != existingScore {
		return candidateScore > existingScore
	}
	return utf8.RuneCountInString(candidate.FullOfferText) > utf8.RuneCountInString(existing.FullOfferText)
}
