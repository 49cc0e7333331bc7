package llm

import (
	"github.com/joseph-ayodele/docs-extractor/constants"
)

// BuildRecordJSONSchema returns the JSON-Schema (draft 2020-12 subset) one
// sanitized record of kind must satisfy. Required-field and amount checks are
// done separately so their failures can be reported precisely; this schema
// only pins down field types.
func BuildRecordJSONSchema(kind constants.DocumentKind) map[string]any {
	if kind == constants.Deed {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				constants.FieldDescription:  scalarProp(),
				constants.FieldAddress:      scalarProp(),
				constants.FieldMunicipality: scalarProp(),
				constants.FieldReferences: map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string", "minLength": 1},
				},
				constants.FieldRegime: map[string]any{"type": []string{"string", "null"}},
			},
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			constants.FieldInvoiceNumber: scalarProp(),
			constants.FieldDate:          scalarProp(),
			constants.FieldTaxID:         scalarProp(),
			constants.FieldProvider:      scalarProp(),
			constants.FieldRegion:        scalarProp(),
			constants.FieldItem:          scalarProp(),
			constants.FieldAmount:        map[string]any{"type": []string{"number", "null"}},
		},
	}
}

func scalarProp() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}
