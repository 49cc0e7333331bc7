// Package crosscheck compares the cadastral references a model reported with
// the ones a deterministic scan finds in the source text.
package crosscheck

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// Pattern selects the identifier shape the scanner looks for.
type Pattern string

const (
	// PatternStrict is 7 digits, a letter, 7 digits and 2 letters.
	PatternStrict Pattern = "strict"
	// PatternLoose is 14 alphanumerics followed by 2 letters.
	PatternLoose Pattern = "loose"
	// PatternFull is the 20-character registry form with control letters.
	PatternFull Pattern = "full"
)

var patterns = map[Pattern]*regexp.Regexp{
	PatternStrict: regexp.MustCompile(`\b\d{7}[A-Z]\d{7}[A-Z]{2}\b`),
	PatternLoose:  regexp.MustCompile(`\b[0-9A-Z]{14}[A-Z]{2}\b`),
	PatternFull:   regexp.MustCompile(`\b\d{7}[0-9A-Z]{7}\d{4}[A-Z]{2}\b`),
}

// ParsePattern accepts "", "strict", "loose" or "full".
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PatternStrict, nil
	}
	if _, ok := patterns[p]; !ok {
		return "", fmt.Errorf("unknown reference pattern %q", s)
	}
	return p, nil
}

// Scanner finds identifiers in text. The zero value uses PatternStrict.
type Scanner struct {
	re *regexp.Regexp
}

func NewScanner(p Pattern) (*Scanner, error) {
	if p == "" {
		p = PatternStrict
	}
	re, ok := patterns[p]
	if !ok {
		return nil, fmt.Errorf("unknown reference pattern %q", p)
	}
	return &Scanner{re: re}, nil
}

// Scan returns the distinct identifiers in the uppercased text, sorted.
func (s *Scanner) Scan(text string) []string {
	re := patterns[PatternStrict]
	if s != nil && s.re != nil {
		re = s.re
	}
	found := re.FindAllString(strings.ToUpper(text), -1)
	slices.Sort(found)
	return slices.Compact(found)
}

// Check diffs the scan of text against the references carried by records.
// Records are not modified.
func (s *Scanner) Check(text string, records []entity.Record) entity.CrossValidationReport {
	lexical := s.Scan(text)

	claimed := make(map[string]struct{})
	for _, r := range records {
		for _, ref := range r.References {
			if ref = strings.ToUpper(strings.TrimSpace(ref)); ref != "" {
				claimed[ref] = struct{}{}
			}
		}
	}

	found := make(map[string]struct{}, len(lexical))
	report := entity.CrossValidationReport{
		MissingFromModel:    make([]string, 0),
		UnexpectedFromModel: make([]string, 0),
	}
	for _, ref := range lexical {
		found[ref] = struct{}{}
		if _, ok := claimed[ref]; !ok {
			report.MissingFromModel = append(report.MissingFromModel, ref)
		}
	}
	for ref := range claimed {
		if _, ok := found[ref]; !ok {
			report.UnexpectedFromModel = append(report.UnexpectedFromModel, ref)
		}
	}
	slices.Sort(report.UnexpectedFromModel)
	return report
}
