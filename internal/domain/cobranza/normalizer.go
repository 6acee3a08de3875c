package cobranza

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// dateLayouts formatos aceptados para fechas en texto, en orden de prueba.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"20060102",
}

// excelEpoch día cero de los seriales de fecha de Excel (sistema 1900, corregido por el 29/02/1900 ficticio).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Rango de seriales de fecha válidos en Excel (01/01/1900 .. 31/12/9999).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Normalizer convierte filas crudas en BillingRecord. No tiene efectos secundarios.
type Normalizer struct {
	mapping ColumnMapping
	format  money.Format
}

// NewNormalizer construye el normalizador con el mapeo de columnas y el formato monetario.
func NewNormalizer(mapping ColumnMapping, format money.Format) *Normalizer {
	if format == "" {
		format = money.FormatBR
	}
	return &Normalizer{mapping: mapping, format: format}
}

// Mapping devuelve el mapeo configurado.
func (n *Normalizer) Mapping() ColumnMapping { return n.mapping }

// ValidateHeader verifica que el encabezado tenga todas las columnas obligatorias.
func (n *Normalizer) ValidateHeader(headers []string) error {
	if missing := newHeaderResolver(headers).missing(n.mapping); len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}
	return nil
}

// Normalize convierte una fila en BillingRecord. index es la posición de la fila en la entrada.
// Retorna *domain.SchemaError si faltan columnas obligatorias; los problemas de campo
// se devuelven como advertencias y el campo queda nulo.
func (n *Normalizer) Normalize(row RawRow, index int) (entity.BillingRecord, []entity.FieldWarning, error) {
	r := resolverFromRow(row)
	if missing := r.missing(n.mapping); len(missing) > 0 {
		return entity.BillingRecord{}, nil, &domain.SchemaError{Missing: missing}
	}
	rec, warnings := n.normalize(r, r.documentColumns(n.mapping), row, index)
	return rec, warnings, nil
}

// NormalizeAll normaliza la tabla completa. Un SchemaError aborta todo el archivo:
// no hay procesamiento parcial.
func (n *Normalizer) NormalizeAll(table RawTable) ([]entity.BillingRecord, []entity.FieldWarning, error) {
	headers := table.Headers
	if len(headers) == 0 && len(table.Rows) > 0 {
		headers = resolverFromRow(table.Rows[0]).headers
	}
	r := newHeaderResolver(headers)
	if missing := r.missing(n.mapping); len(missing) > 0 {
		return nil, nil, &domain.SchemaError{Missing: missing}
	}
	docCols := r.documentColumns(n.mapping)

	records := make([]entity.BillingRecord, 0, len(table.Rows))
	var warnings []entity.FieldWarning
	for i, row := range table.Rows {
		rec, w := n.normalize(r, docCols, row, i)
		records = append(records, rec)
		warnings = append(warnings, w...)
	}
	return records, warnings, nil
}

func (n *Normalizer) normalize(r *headerResolver, docCols []string, row RawRow, index int) (entity.BillingRecord, []entity.FieldWarning) {
	get := func(f Field) (string, any) {
		col := r.lookup(n.mapping.Column(f))
		if col == "" {
			return "", nil
		}
		return col, row[col]
	}

	var warnings []entity.FieldWarning
	rec := entity.BillingRecord{RowIndex: index}

	_, v := get(FieldPhone)
	rec.ContactPhone = stringValue(v)
	_, v = get(FieldCustomerID)
	rec.CustomerID = stringValue(v)
	_, v = get(FieldTaxID)
	rec.TaxID = stringValue(v)
	_, v = get(FieldName)
	rec.DisplayName = stringValue(v)

	if col, v := get(FieldAmount); col != "" {
		amount, err := parseAmount(v, n.format)
		if err != nil {
			warnings = append(warnings, entity.FieldWarning{
				RowIndex: index, Column: col, Value: stringValue(v), Reason: err.Error(),
			})
		}
		rec.AmountDue = amount
	}

	if col, v := get(FieldDueDate); col != "" {
		due, err := parseDate(v)
		if err != nil {
			warnings = append(warnings, entity.FieldWarning{
				RowIndex: index, Column: col, Value: stringValue(v), Reason: err.Error(),
			})
		}
		rec.DueDate = due
	}

	for _, col := range docCols {
		if u := stringValue(row[col]); u != "" && !isNullMarker(u) {
			rec.DocumentURLs = append(rec.DocumentURLs, u)
		}
	}

	rec.LogicalCustomerKey = DeriveKey(rec)
	return rec, warnings
}

// ── conversión de valores ─────────────────────────────────────────────────────

// stringValue representa un valor crudo como texto recortado.
// Los números se escriben sin exponente para que teléfonos y CNPJs no se deformen.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(entity.DateLayout)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// isNullMarker textos que las exportaciones usan para "sin valor".
func isNullMarker(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "null", "none", "-", "n/a":
		return true
	}
	return false
}

// parseAmount interpreta un monto. Vacío → nulo sin error; ilegible → nulo con error.
func parseAmount(v any, format money.Format) (decimal.NullDecimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(t)), nil
	case float32:
		return decimal.NewNullDecimal(decimal.NewFromFloat32(t)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(t))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(t)), nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("monto inválido: %w", err)
		}
		return decimal.NewNullDecimal(d), nil
	}

	s := stringValue(v)
	if s == "" || isNullMarker(s) {
		return decimal.NullDecimal{}, nil
	}
	d, err := money.Parse(s, format)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("monto inválido: %w", err)
	}
	return decimal.NewNullDecimal(d), nil
}

// parseDate interpreta una fecha de forma permisiva. Vacío → nil sin error; ilegible → nil con error.
// El resultado se trunca al día civil en UTC.
func parseDate(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return civil(t), nil
	case float64:
		return excelSerial(t)
	case int:
		return excelSerial(float64(t))
	case int64:
		return excelSerial(float64(t))
	}

	s := stringValue(v)
	if s == "" || isNullMarker(s) {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return civil(d), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return excelSerial(f)
	}
	return nil, fmt.Errorf("fecha inválida: %q", s)
}

func excelSerial(f float64) (*time.Time, error) {
	if math.IsNaN(f) || f < minExcelSerial || f > maxExcelSerial {
		return nil, fmt.Errorf("serial de fecha fuera de rango: %v", f)
	}
	days := math.Floor(f)
	d := excelEpoch.AddDate(0, 0, int(days))
	return &d, nil
}

func civil(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
