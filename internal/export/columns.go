package export

import (
	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// Column maps a record key to its spreadsheet header. Headers are part of
// the output format consumed downstream and must not change.
type Column struct {
	Key    string
	Header string
}

const (
	keyRowIndex  = "id_fila"
	keyReference = "referencia_catastral"
)

var InvoiceColumns = []Column{
	{constants.FieldOrderNumber, "Nº ORDEN"},
	{constants.FieldInvoiceNumber, "Nº FACTURA"},
	{constants.FieldDate, "FECHA"},
	{constants.FieldTaxID, "CIF"},
	{constants.FieldProvider, "PROVEEDOR"},
	{constants.FieldRegion, "COMUNIDAD AUTÓNOMA"},
	{constants.FieldItem, "ARTÍCULO"},
	{constants.FieldAmount, "CANTIDAD"},
}

var DeedColumns = []Column{
	{keyRowIndex, "INDICE"},
	{constants.FieldDeedType, "TIPO"},
	{constants.FieldRegime, "RÉGIMEN"},
	{constants.FieldDescription, "DESCRIPCIÓN"},
	{keyReference, "REFERENCIA CATASTRAL"},
}

// SheetName returns the worksheet name used for kind.
func SheetName(kind constants.DocumentKind) string {
	if kind == constants.Deed {
		return "Escrituras"
	}
	return "Facturas"
}

// Table flattens a result into its column set and cell values. Invoices give
// one row per record. Deeds give one row per cadastral reference with the
// record's other fields repeated, and INDICE numbered over the flattened rows.
func Table(res entity.Result) ([]Column, [][]any) {
	if res.Kind == constants.Deed {
		return DeedColumns, deedRows(res)
	}
	return InvoiceColumns, invoiceRows(res)
}

func invoiceRows(res entity.Result) [][]any {
	rows := make([][]any, 0, len(res.Records))
	for _, r := range res.Records {
		row := make([]any, len(InvoiceColumns))
		for i, c := range InvoiceColumns {
			if c.Key == constants.FieldOrderNumber {
				row[i] = r.Seq
				continue
			}
			row[i] = r.Field(c.Key).Raw()
		}
		rows = append(rows, row)
	}
	return rows
}

func deedRows(res entity.Result) [][]any {
	rows := make([][]any, 0, len(res.Records))
	for _, r := range res.Records {
		refs := r.References
		if len(refs) == 0 {
			refs = []string{""}
		}
		var regime any = r.Field(constants.FieldRegime).Raw()
		if r.Regime != constants.RegimeUnknown {
			regime = string(r.Regime)
		}
		for _, ref := range refs {
			rows = append(rows, []any{
				len(rows) + 1,
				nilIfEmpty(res.Title),
				regime,
				r.Field(constants.FieldDescription).Raw(),
				nilIfEmpty(ref),
			})
		}
	}
	return rows
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
