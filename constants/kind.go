package constants

import "strings"

// DocumentKind selects the prompt, schema and export layout of a run.
type DocumentKind string

const (
	Invoice DocumentKind = "INVOICE"
	Deed    DocumentKind = "DEED"
)

// ParseKind accepts the CLI spellings of a document kind.
func ParseKind(s string) (DocumentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invoice", "invoices", "factura", "facturas":
		return Invoice, true
	case "deed", "deeds", "escritura", "escrituras":
		return Deed, true
	default:
		return "", false
	}
}

// Invoice line fields, in export order.
const (
	FieldOrderNumber   = "numero_orden"
	FieldInvoiceNumber = "numero_factura"
	FieldDate          = "fecha"
	FieldTaxID         = "cif"
	FieldProvider      = "proveedor"
	FieldRegion        = "comunidad_autonoma"
	FieldItem          = "articulo"
	FieldAmount        = "cantidad"
)

// Deed payload and inventory item fields.
const (
	FieldDeedType     = "tipo"
	FieldInventory    = "inventario"
	FieldProperties   = "inmuebles"
	FieldAlerts       = "alertas"
	FieldDescription  = "descripcion"
	FieldAddress      = "direccion"
	FieldMunicipality = "municipio"
	FieldReferences   = "referencias_catastrales"
	FieldRegime       = "regimen"
)
