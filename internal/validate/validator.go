// Package validate checks sanitized model records against the per-kind
// schema and normalizes them into entity.Record values.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

var reNotAmount = regexp.MustCompile(`[^\d.,-]`)

// Validator checks records of one kind. It is safe for concurrent use.
type Validator struct {
	schema Schema
	json   *jsonschema.Schema
}

// New compiles s.JSONSchema once.
func New(s Schema) (*Validator, error) {
	v := &Validator{schema: s}
	if s.JSONSchema == nil {
		return v, nil
	}

	b, err := json.Marshal(s.JSONSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v.json = compiled
	return v, nil
}

// ForKind is New(SchemaFor(kind)).
func ForKind(kind constants.DocumentKind) (*Validator, error) {
	return New(SchemaFor(kind))
}

func (v *Validator) Schema() Schema {
	return v.schema
}

// Validate checks one record: required fields, then amount, then field
// types. The returned error is a *MissingFieldsError, *InvalidAmountError or
// *InvalidFieldError. Seq and Segment are left for the caller to set.
func (v *Validator) Validate(raw any) (entity.Record, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return entity.Record{}, &InvalidFieldError{Reason: fmt.Sprintf("record is %s, not an object", jsonType(raw))}
	}

	var missing []string
	for _, k := range v.schema.Required {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return entity.Record{}, &MissingFieldsError{Missing: missing}
	}

	fields := make(map[string]any, len(m))
	for k, val := range m {
		fields[k] = val
	}

	if f := v.schema.AmountField; f != "" {
		if val, ok := fields[f]; ok {
			amount, err := NormalizeAmount(val)
			if err != nil {
				return entity.Record{}, &InvalidAmountError{Field: f, Value: val}
			}
			fields[f] = amount
		}
	}

	if v.json != nil {
		doc, err := jsonShaped(fields)
		if err != nil {
			return entity.Record{}, &InvalidFieldError{Reason: "not representable as JSON", Err: err}
		}
		if err := v.json.Validate(doc); err != nil {
			return entity.Record{}, &InvalidFieldError{Reason: "json does not match schema", Err: err}
		}
	}

	rec := entity.Record{
		Kind:   v.schema.Kind,
		Fields: make(map[string]entity.Value, len(fields)),
	}
	for k, val := range fields {
		if n, ok := val.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				val = f
			}
		}
		rec.Fields[k] = entity.Of(val)
	}

	if v.schema.Kind == constants.Deed {
		rec.References = references(fields[constants.FieldReferences])
		if s, ok := fields[constants.FieldRegime].(string); ok {
			if r, ok := constants.CanonicalizeRegime(s); ok {
				rec.Regime = r
				rec.Fields[constants.FieldRegime] = entity.Of(string(r))
			}
		}
	}
	return rec, nil
}

// NormalizeAmount coerces a model-emitted amount. Strings keep only digits,
// separators and sign; a comma is a decimal comma. When several dots remain,
// all but the last are thousands separators, so "1.234,56" is 1234.56.
// Numbers and nil pass through; json.Number is converted to float64.
func NormalizeAmount(val any) (any, error) {
	switch t := val.(type) {
	case nil:
		return nil, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		s := reNotAmount.ReplaceAllString(t, "")
		s = strings.ReplaceAll(s, ",", ".")
		if n := strings.Count(s, "."); n > 1 {
			s = strings.Replace(s, ".", "", n-1)
		}
		return strconv.ParseFloat(s, 64)
	default:
		return nil, fmt.Errorf("unsupported amount type %T", val)
	}
}

// jsonShaped round-trips through encoding/json so the schema validator only
// sees the types it understands.
func jsonShaped(m map[string]any) (any, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func references(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case json.Number, float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
