// Package cobranza contiene la lógica pura del pipeline de cobranzas:
// normalización de filas, derivación de la clave lógica de cliente,
// fusión de holdings y agregación de montos y vencimientos.
package cobranza

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Cobranzas-api/pkg/textnorm"
)

// Field campo lógico de un BillingRecord que se lee de una columna.
type Field string

const (
	FieldPhone      Field = "phone"
	FieldCustomerID Field = "customer_id"
	FieldTaxID      Field = "tax_id"
	FieldName       Field = "name"
	FieldAmount     Field = "amount"
	FieldDueDate    Field = "due_date"
)

// RawRow fila cruda: nombre de columna → valor (string, float64, int, time.Time o nil).
type RawRow map[string]any

// RawTable planilla ya leída: encabezados en orden y filas.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// ColumnMapping declara qué columna de la planilla alimenta cada campo.
// Las columnas vacías no se leen. Los nombres se comparan sin acentos ni mayúsculas.
type ColumnMapping struct {
	Phone      string
	CustomerID string
	TaxID      string
	Name       string
	Amount     string
	DueDate    string

	// DocumentColumns columnas de URL explícitas, en el orden en que se concatenan.
	DocumentColumns []string
	// DocumentPrefix descubre columnas de URL por prefijo (ej. "Link_"), en orden de encabezado.
	DocumentPrefix string

	Required         []Field
	RequireDocuments bool
}

// Column devuelve el nombre de columna declarado para f.
func (m ColumnMapping) Column(f Field) string {
	switch f {
	case FieldPhone:
		return m.Phone
	case FieldCustomerID:
		return m.CustomerID
	case FieldTaxID:
		return m.TaxID
	case FieldName:
		return m.Name
	case FieldAmount:
		return m.Amount
	case FieldDueDate:
		return m.DueDate
	}
	return ""
}

// Nombres de presets.
const (
	PresetNameWABA   = "waba"
	PresetNamePortal = "portal"
)

// PresetWABA planilla de cobranza con links de boletos (Telefone/Valor_Atualizado/Data_Vencimento/Link_*).
func PresetWABA() ColumnMapping {
	return ColumnMapping{
		Phone:            "Telefone",
		CustomerID:       "Codigo_Cliente",
		TaxID:            "CNPJ",
		Name:             "Cliente",
		Amount:           "Valor_Atualizado",
		DueDate:          "Data_Vencimento",
		DocumentPrefix:   "Link_",
		Required:         []Field{FieldAmount, FieldDueDate},
		RequireDocuments: true,
	}
}

// PresetPortal planilla del portal de faturamento con una columna por tipo de PDF.
func PresetPortal() ColumnMapping {
	return ColumnMapping{
		Phone:      "Telefone",
		CustomerID: "Código Cliente",
		TaxID:      "CNPJ",
		Name:       "Razão Social",
		Amount:     "Valor",
		DueDate:    "Vencimento",
		DocumentColumns: []string{
			"Boleto PDF", "Nfse PDF", "Faturamento PDF", "Funcionários PDF",
		},
		Required:         []Field{FieldAmount},
		RequireDocuments: true,
	}
}

// Preset devuelve el mapeo registrado con ese nombre.
func Preset(name string) (ColumnMapping, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PresetNameWABA, "":
		return PresetWABA(), nil
	case PresetNamePortal:
		return PresetPortal(), nil
	default:
		return ColumnMapping{}, fmt.Errorf("cobranza: preset desconocido %q", name)
	}
}

// ── resolución de encabezados ────────────────────────────────────────────────

// headerResolver traduce nombres declarados a los encabezados reales de la planilla.
type headerResolver struct {
	headers []string          // orden original
	exact   map[string]string // nombre exacto → nombre exacto
	folded  map[string]string // Fold(nombre) → primer encabezado real con ese fold
}

func newHeaderResolver(headers []string) *headerResolver {
	r := &headerResolver{
		headers: headers,
		exact:   make(map[string]string, len(headers)),
		folded:  make(map[string]string, len(headers)),
	}
	for _, h := range headers {
		r.exact[h] = h
		f := textnorm.Fold(h)
		if _, ok := r.folded[f]; !ok {
			r.folded[f] = h
		}
	}
	return r
}

// resolverFromRow construye un resolver a partir de las claves de una fila.
// Un map no tiene orden: los encabezados se ordenan para que el descubrimiento por prefijo sea determinista.
func resolverFromRow(row RawRow) *headerResolver {
	headers := make([]string, 0, len(row))
	for k := range row {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return newHeaderResolver(headers)
}

// lookup devuelve el encabezado real para name ("" si no existe).
func (r *headerResolver) lookup(name string) string {
	if name == "" {
		return ""
	}
	if h, ok := r.exact[name]; ok {
		return h
	}
	return r.folded[textnorm.Fold(name)]
}

// documentColumns devuelve las columnas de URL: explícitas primero, luego las del prefijo, sin repetir.
func (r *headerResolver) documentColumns(m ColumnMapping) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.DocumentColumns {
		if h := r.lookup(c); h != "" && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	if m.DocumentPrefix != "" {
		prefix := textnorm.Fold(m.DocumentPrefix)
		for _, h := range r.headers {
			if !seen[h] && strings.HasPrefix(textnorm.Fold(h), prefix) {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

// missing lista las columnas obligatorias que no aparecen en el encabezado.
func (r *headerResolver) missing(m ColumnMapping) []string {
	var out []string
	for _, f := range m.Required {
		name := m.Column(f)
		if name == "" {
			out = append(out, string(f))
			continue
		}
		if r.lookup(name) == "" {
			out = append(out, name)
		}
	}
	if m.RequireDocuments && len(r.documentColumns(m)) == 0 {
		switch {
		case len(m.DocumentColumns) > 0:
			out = append(out, strings.Join(m.DocumentColumns, " | "))
		case m.DocumentPrefix != "":
			out = append(out, m.DocumentPrefix+"*")
		default:
			out = append(out, "documentos")
		}
	}
	return out
}
