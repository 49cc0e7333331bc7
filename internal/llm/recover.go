package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

var (
	// ErrNoPayload means the response held no parseable JSON object or array.
	ErrNoPayload = errors.New("no JSON payload in model response")
	// ErrUnexpectedShape means JSON was found but not in the kind's payload shape.
	ErrUnexpectedShape = errors.New("unexpected payload shape")

	reFenceOpen = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\n?")
)

// RecoveryError carries the reason a response yielded no records and a short
// excerpt of the response for the logs.
type RecoveryError struct {
	Err     error
	Snippet string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recover payload: %v (%q)", e.Err, e.Snippet)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// Payload is the kind-shaped content recovered from one model response.
// Items are the raw record candidates, not yet sanitized or validated.
type Payload struct {
	Items  []any
	Title  string
	Alerts []string
}

// maxCandidates bounds the openers tried per response, which keeps a long run
// of unbalanced brackets linear in the response size.
const maxCandidates = 64

// Recover extracts the first well-formed JSON object or array from noisy
// model text. Numbers decode as json.Number. It returns false when nothing
// parseable is found; it never panics on arbitrary input.
func Recover(raw string) (any, bool) {
	s := stripCodeFence(raw)
	if s == "" {
		return nil, false
	}
	spans := balancedSpans(s)

	if s[0] == '[' {
		if end, ok := spans[0]; ok {
			if v, ok := decodeSpan(s, 0, end); ok {
				return v, true
			}
		}
		if items, ok := salvageArray(s, spans); ok {
			return items, true
		}
	}

	attempts := 0
	for i := 0; i < len(s) && attempts < maxCandidates; i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		if i == 0 && s[0] == '[' {
			continue
		}
		attempts++
		end, ok := spans[i]
		if !ok {
			// unclosed, or inside what the single pass took for a string
			if end, ok = matchBalanced(s, i); !ok {
				continue
			}
		}
		v, ok := decodeSpan(s, i, end)
		if !ok {
			continue
		}
		// an array of scalars in prose ("see [1]") is not a payload
		if arr, isArr := v.([]any); isArr && !hasObject(arr) {
			continue
		}
		return v, true
	}
	return nil, false
}

// RecoverRecords recovers a response and applies the payload shape of kind:
// invoices are an array of line objects (a lone object is one line); deeds are
// a wrapper object carrying the inventory list, tipo and alertas, or a bare
// inventory array.
func RecoverRecords(raw string, kind constants.DocumentKind) (Payload, error) {
	v, ok := Recover(raw)
	if !ok {
		return Payload{}, &RecoveryError{Err: ErrNoPayload, Snippet: snippet(raw)}
	}

	var (
		p   Payload
		err error
	)
	switch kind {
	case constants.Deed:
		p, err = deedPayload(v)
	default:
		p, err = invoicePayload(v)
	}
	if err != nil {
		return Payload{}, &RecoveryError{Err: err, Snippet: snippet(raw)}
	}
	return p, nil
}

func invoicePayload(v any) (Payload, error) {
	switch t := v.(type) {
	case []any:
		return Payload{Items: t}, nil
	case map[string]any:
		return Payload{Items: []any{t}}, nil
	default:
		return Payload{}, fmt.Errorf("%w: %T", ErrUnexpectedShape, v)
	}
}

func deedPayload(v any) (Payload, error) {
	switch t := v.(type) {
	case []any:
		return Payload{Items: t}, nil
	case map[string]any:
		p := Payload{
			Title:  trimmedString(t[constants.FieldDeedType]),
			Alerts: stringList(t[constants.FieldAlerts]),
		}
		list, found := t[constants.FieldInventory]
		if !found {
			list, found = t[constants.FieldProperties]
		}
		switch items := list.(type) {
		case []any:
			p.Items = items
		case nil:
			// a lone inventory item without the wrapper
			if !found && looksLikeDeedItem(t) {
				p.Items = []any{t}
			}
		default:
			return Payload{}, fmt.Errorf("%w: inventory is %T", ErrUnexpectedShape, list)
		}
		return p, nil
	default:
		return Payload{}, fmt.Errorf("%w: %T", ErrUnexpectedShape, v)
	}
}

func looksLikeDeedItem(m map[string]any) bool {
	for _, k := range []string{constants.FieldDescription, constants.FieldReferences, constants.FieldRegime} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = reFenceOpen.ReplaceAllString(s, "")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func decodeSpan(s string, start, end int) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s[start:end]))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedSpans maps the offset of every opener that closes properly to the
// offset just past its closer, in a single pass. Quotes only open a string
// inside an open bracket; a mismatched closer abandons every pending opener.
func balancedSpans(s string) map[int]int {
	spans := make(map[int]int)
	var stack []int
	inString, escaped := false, false
	for j := 0; j < len(s); j++ {
		c := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = len(stack) > 0
		case '{', '[':
			stack = append(stack, j)
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			if closerOf(s[open]) != c {
				stack = stack[:0]
				continue
			}
			stack = stack[:len(stack)-1]
			spans[open] = j + 1
		}
	}
	return spans
}

// matchBalanced returns the end offset of the JSON value opening at start.
// Brackets inside string literals are ignored.
func matchBalanced(s string, start int) (int, bool) {
	var stack []byte
	inString, escaped := false, false
	for j := start; j < len(s); j++ {
		c := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, closerOf(c))
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return j + 1, true
			}
		}
	}
	return 0, false
}

func closerOf(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

// salvageArray keeps the complete leading objects of an array that is
// truncated or otherwise malformed.
func salvageArray(s string, spans map[int]int) ([]any, bool) {
	var items []any
	j := 1
	for j < len(s) {
		switch s[j] {
		case ' ', '\t', '\r', '\n', ',':
			j++
			continue
		case '{':
			end, ok := spans[j]
			if !ok {
				return items, len(items) > 0
			}
			obj, ok := decodeSpan(s, j, end)
			if !ok {
				return items, len(items) > 0
			}
			items = append(items, obj)
			j = end
			continue
		}
		break
	}
	return items, len(items) > 0
}

func hasObject(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.(map[string]any); ok {
			return true
		}
	}
	return false
}

func trimmedString(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := trimmedString(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := trimmedString(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > 120 {
		return string(r[:120]) + "…"
	}
	return s
}
