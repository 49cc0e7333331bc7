package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reSpaceRun   = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n\s*\n+`)
)

// Normalize cleans page text without touching its content: line endings
// become \n, runs of spaces and tabs become one space, runs of blank lines
// become one blank line, and the result is trimmed.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reSpaceRun.ReplaceAllString(s, " ")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
