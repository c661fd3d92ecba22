package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	keywordSalaryPattern = regexp.MustCompile(`(?i)(?:salary|compensation)[^\d$]{0,20}(\$?\d[\d,]*[kKmM]?(?:\s*[–\-]\s*\$?\d[\d,]*[kKmM]?)?)`)
	dollarSalaryPattern  = regexp.MustCompile(`\$\d[\d,]*(?:\.\d+)?[kKmM]?(?:\s*[–\-]\s*\$\d[\d,]*(?:\.\d+)?[kKmM]?)?`)
	employmentPattern    = regexp.MustCompile(`(?i)\b(full[-\s]?time|part[-\s]?time|contract|temporary|intern(?:ship)?)\b`)
)

// Salary returns the salary figure or range mentioned in text, or "".
// A figure anchored by "salary" or "compensation" wins over a bare dollar
// amount found elsewhere. Numbers without either anchor are ignored.
func Salary(text string) string {
	if match := keywordSalaryPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	if match := dollarSalaryPattern.FindString(text); match != "" {
		return strings.TrimSpace(match)
	}
	return ""
}

// EmploymentType returns the first employment type term in text, or "".
func EmploymentType(text string) string {
	match := employmentPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// SkillTerm maps a lowercase token to its display label.
type SkillTerm struct {
	Token string
	Label string
}

// Vocabulary is an ordered skill list. Match results follow this order.
type Vocabulary []SkillTerm

var (
	defaultSkillTokens = []string{"django", "python", "postgresql", "aws", "kubernetes", "docker", "rest", "api", "pytest", "sql", "react"}
	defaultAcronyms    = []string{"aws", "api", "rest", "sql"}
)

// DefaultVocabulary returns the built-in skill list.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultSkillTokens, defaultAcronyms)
}

// DefaultSkillTokens returns a copy of the built-in skill tokens.
func DefaultSkillTokens() []string {
	return append([]string{}, defaultSkillTokens...)
}

// DefaultAcronyms returns a copy of the tokens rendered in upper case.
func DefaultAcronyms() []string {
	return append([]string{}, defaultAcronyms...)
}

// NewVocabulary builds a vocabulary from tokens. Tokens listed in acronyms
// are labelled in upper case, the rest are capitalized.
func NewVocabulary(tokens []string, acronyms []string) Vocabulary {
	upper := make(map[string]struct{}, len(acronyms))
	for _, acronym := range acronyms {
		upper[strings.ToLower(strings.TrimSpace(acronym))] = struct{}{}
	}

	vocab := make(Vocabulary, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}

		first, size := utf8.DecodeRuneInString(token)
		label := string(unicode.ToUpper(first)) + token[size:]
		if _, ok := upper[token]; ok {
			label = strings.ToUpper(token)
		}
		vocab = append(vocab, SkillTerm{Token: token, Label: label})
	}
	return vocab
}

// Match returns the labels of every term contained in text.
func (v Vocabulary) Match(text string) []string {
	lower := strings.ToLower(text)
	var labels []string
	for _, term := range v {
		if strings.Contains(lower, term.Token) {
			labels = append(labels, term.Label)
		}
	}
	return labels
}
