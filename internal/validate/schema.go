package validate

import (
	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/llm"
)

// Schema describes the record shape of one document kind.
type Schema struct {
	Kind constants.DocumentKind
	// Fields lists the known keys in export order.
	Fields []string
	// Required keys must be present; null is allowed.
	Required []string
	// AmountField is coerced to a number; empty when the kind has none.
	AmountField string
	JSONSchema  map[string]any
}

func InvoiceSchema() Schema {
	fields := []string{
		constants.FieldInvoiceNumber,
		constants.FieldDate,
		constants.FieldTaxID,
		constants.FieldProvider,
		constants.FieldRegion,
		constants.FieldItem,
		constants.FieldAmount,
	}
	return Schema{
		Kind:        constants.Invoice,
		Fields:      fields,
		Required:    fields,
		AmountField: constants.FieldAmount,
		JSONSchema:  llm.BuildRecordJSONSchema(constants.Invoice),
	}
}

func DeedSchema() Schema {
	return Schema{
		Kind: constants.Deed,
		Fields: []string{
			constants.FieldDescription,
			constants.FieldAddress,
			constants.FieldMunicipality,
			constants.FieldReferences,
			constants.FieldRegime,
		},
		Required:   []string{constants.FieldDescription},
		JSONSchema: llm.BuildRecordJSONSchema(constants.Deed),
	}
}

// SchemaFor returns the schema of kind.
func SchemaFor(kind constants.DocumentKind) Schema {
	if kind == constants.Deed {
		return DeedSchema()
	}
	return InvoiceSchema()
}
