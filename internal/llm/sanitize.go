package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

var (
	reRefSplit = regexp.MustCompile(`[,;\n]+`)

	keySynonyms = map[string]string{
		"nif":                  constants.FieldTaxID,
		"cif_nif":              constants.FieldTaxID,
		"num_factura":          constants.FieldInvoiceNumber,
		"n_factura":            constants.FieldInvoiceNumber,
		"factura":              constants.FieldInvoiceNumber,
		"comunidad":            constants.FieldRegion,
		"comunidad_autónoma":   constants.FieldRegion,
		"artículo":             constants.FieldItem,
		"referencia_catastral": constants.FieldReferences,
		"referencias":          constants.FieldReferences,
		"refs_catastrales":     constants.FieldReferences,
		"régimen":              constants.FieldRegime,
		"descripción":          constants.FieldDescription,
		"dirección":            constants.FieldAddress,
	}
)

// SanitizeRecord returns a cleaned copy of one model-emitted record. Keys are
// trimmed, lowercased and mapped from known synonyms. Blank strings and the
// literal "null" become null, except under amountField, whose raw value is
// left for amount validation. Invoice numero_orden is dropped since the
// pipeline numbers records itself, and deed references are coerced into a
// list of trimmed strings.
//
// A canonical key always wins over its synonyms; between synonyms the
// lexically smallest raw key wins. The input map is not modified.
func SanitizeRecord(item map[string]any, kind constants.DocumentKind, amountField string, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}

	raw := make([]string, 0, len(item))
	for k := range item {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	m := make(map[string]any, len(item))
	changed := make([]string, 0, 4)
	var synonyms []string

	for _, k := range raw {
		key := normalizeKey(k)
		if _, ok := keySynonyms[key]; ok {
			synonyms = append(synonyms, k)
			continue
		}
		if _, exists := m[key]; exists {
			changed = append(changed, k+"(duplicate)")
			continue
		}
		m[key] = cleanValue(key, item[k], amountField)
	}
	for _, k := range synonyms {
		to := keySynonyms[normalizeKey(k)]
		if _, exists := m[to]; exists {
			changed = append(changed, k+"(shadowed)")
			continue
		}
		changed = append(changed, k+"->"+to)
		m[to] = cleanValue(to, item[k], amountField)
	}

	if kind == constants.Invoice {
		if _, ok := m[constants.FieldOrderNumber]; ok {
			delete(m, constants.FieldOrderNumber)
			changed = append(changed, constants.FieldOrderNumber+"(system)")
		}
	}

	if kind == constants.Deed {
		if v, ok := m[constants.FieldReferences]; ok {
			m[constants.FieldReferences] = referenceList(v)
		} else {
			m[constants.FieldReferences] = []any{}
		}
	}

	if len(changed) > 0 {
		logger.Debug("llm.sanitize.record", "kind", kind, "changed", changed)
	}
	return m
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
}

func cleanValue(key string, v any, amountField string) any {
	if amountField != "" && key == amountField {
		return v
	}
	return cleanScalar(v)
}

func cleanScalar(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return s
}

func referenceList(v any) []any {
	out := make([]any, 0, 2)
	switch t := v.(type) {
	case nil:
	case string:
		for _, part := range reRefSplit.Split(t, -1) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []any:
		for _, e := range t {
			switch x := e.(type) {
			case nil:
			case string:
				if p := strings.TrimSpace(x); p != "" {
					out = append(out, p)
				}
			case json.Number:
				out = append(out, x.String())
			default:
				// leave for the schema check to report
				out = append(out, x)
			}
		}
	default:
		return []any{v}
	}
	return out
}
