package llm

import (
	"strings"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

// TextPlaceholder marks where the segment text goes in a prompt template.
const TextPlaceholder = "{{text}}"

// PromptFor returns the default prompt template for a document kind.
func PromptFor(kind constants.DocumentKind) string {
	switch kind {
	case constants.Deed:
		return deedPrompt
	default:
		return invoicePrompt
	}
}

// Render substitutes the segment text into the template. A template with no
// placeholder gets the text appended after a blank line.
func Render(template, text string) string {
	if !strings.Contains(template, TextPlaceholder) {
		return strings.TrimRight(template, "\n") + "\n\n" + text
	}
	return strings.ReplaceAll(template, TextPlaceholder, text)
}

var invoicePrompt = strings.Join([]string{
	"Eres un sistema experto en análisis documental jurídico-contable.",
	"Analiza el siguiente texto extraído de una factura.",
	"Devuelve EXCLUSIVAMENTE un ARRAY JSON válido, sin explicaciones, sin texto adicional, sin comillas triples y sin comentarios.",
	"Cada elemento del array representa una línea de factura con esta estructura:",
	`[{"numero_factura": string | null, "fecha": string | null, "cif": string | null, "proveedor": string | null, ` +
		`"comunidad_autonoma": string | null, "articulo": string | null, "cantidad": number | null}]`,
	"Reglas estrictas:",
	"- El resultado debe ser SIEMPRE un array, incluso con una sola línea.",
	"- Un objeto por cada línea de producto.",
	"- No incluir campos adicionales. Si un dato no aparece, usar null. No inventar datos.",
	"Reglas para \"cantidad\":",
	"- Es el valor numérico situado inmediatamente antes de la columna \"P.Un.\" en la línea de consumo.",
	"- No es el precio unitario, ni el descuento, ni el importe final, ni parte del nombre del producto.",
	"- Copiar EXACTAMENTE el signo que aparece en el texto; sin \"-\" delante la cantidad es positiva.",
	"- Ignorar números entre corchetes y las secciones \"Totales\", \"Resumen de Carburantes\" y \"Desglose de Impuestos\".",
	"Reglas para \"fecha\": formato YYYY-MM-DD; convertir DD/MM/YYYY o DD-MM-YYYY.",
	"",
	"Texto de la factura:",
	TextPlaceholder,
}, "\n")

var deedPrompt = strings.Join([]string{
	"Eres un sistema experto en análisis de escrituras notariales españolas.",
	"Extrae únicamente la información presente en el texto.",
	"Devuelve exclusivamente un JSON válido, sin explicaciones, sin texto adicional y sin comillas triples. No inventes datos.",
	"Estructura obligatoria:",
	`{"numero_escritura": string | null, "tipo": string | null, "inmuebles": [{"descripcion": string | null, ` +
		`"direccion": string | null, "municipio": string | null, "referencias_catastrales": [string], ` +
		`"regimen": "ganancial" | "privativo" | null}], "alertas": [string]}`,
	"Reglas:",
	"- Si un dato no aparece, usar null.",
	"- No duplicar referencias catastrales y extraerlas exactamente como aparecen.",
	"- Solo considerar como referencia catastral códigos alfanuméricos largos (mínimo 10 caracteres).",
	"- No incluir números de inventario, importes ni números aislados.",
	"- Dentro de un bloque \"ACTIVOS DE NATURALEZA GANANCIAL\" marcar \"regimen\": \"ganancial\".",
	"- Dentro de un bloque \"ACTIVO DE NATURALEZA PRIVATIVA\" marcar \"regimen\": \"privativo\".",
	"- Si no se puede determinar, usar null.",
	"",
	"Texto:",
	TextPlaceholder,
}, "\n")
