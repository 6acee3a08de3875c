package consolidation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// Nombres de archivo de la exportación.
const (
	SummaryFileName = "Output_WABA.xlsx"
	ReportFileName  = "relatorio.pdf"
	documentSuffix  = "_unificado.pdf"
)

// SummaryRow fila de la planilla de salida (una por grupo, en orden de grupos).
type SummaryRow struct {
	Phone        string          // telefone: teléfono de la clave TEL_, si no la clave completa
	Amount       decimal.Decimal // total del grupo
	AmountText   string          // {{1}}: "R$ 1.234,56"
	DueDate      string          // {{3}}: DD/MM/YYYY, "datas variadas" o vacío
	DocumentFile string          // arquivo_pdf: vacío si el grupo no tiene PDF
	Key          string
	Name         string
	Documents    string // "2 de 3"
	State        entity.ConsolidationState
}

// SummaryHeaders encabezados de Output_WABA.xlsx, en el orden de SummaryRow.Values.
var SummaryHeaders = []string{"telefone", "{{1}}", "{{3}}", "arquivo_pdf", "chave", "nome", "documentos"}

// Values devuelve la fila como celdas de texto.
func (r SummaryRow) Values() []string {
	return []string{r.Phone, r.AmountText, r.DueDate, r.DocumentFile, r.Key, r.Name, r.Documents}
}

// BuildSummaryRows arma las filas de salida de un lote.
func BuildSummaryRows(batch *entity.Batch) []SummaryRow {
	names := DocumentFileNames(batch)
	rows := make([]SummaryRow, 0, len(batch.Groups))
	for _, g := range batch.Groups {
		res, ok := batch.Results[g.Key]
		if !ok {
			res = entity.ConsolidationResult{GroupKey: g.Key, State: entity.ConsolidationPending}
		}
		row := SummaryRow{
			Phone:      displayPhone(g.Key),
			Amount:     g.TotalAmount,
			AmountText: money.FormatBRL(g.TotalAmount),
			DueDate:    g.DueDate.String(),
			Key:        g.Key,
			Name:       g.DisplayName,
			Documents:  fmt.Sprintf("%d de %d", res.SucceededCount, res.AttemptedCount),
			State:      res.State,
		}
		row.DocumentFile = names[g.Key]
		rows = append(rows, row)
	}
	return rows
}

func displayPhone(key string) string {
	if phone, ok := cobranza.PhoneFromKey(key); ok {
		return phone
	}
	return key
}

// DocumentFileName nombre del PDF consolidado de un grupo ("<telefone>_unificado.pdf").
// Los caracteres fuera de [A-Za-z0-9_-] se reemplazan por "_" (un CNPJ trae "/" y ".").
func DocumentFileName(key string) string {
	var b strings.Builder
	for _, r := range displayPhone(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + documentSuffix
}

// DocumentFileNames nombre de archivo de cada grupo con documento, único dentro del lote.
// Dos claves que se sanitizan igual reciben un sufijo numérico en orden de grupos.
func DocumentFileNames(batch *entity.Batch) map[string]string {
	names := make(map[string]string, len(batch.Groups))
	used := make(map[string]bool, len(batch.Groups))
	for _, g := range batch.Groups {
		if !batch.Results[g.Key].HasDocument() {
			continue
		}
		name := DocumentFileName(g.Key)
		base := strings.TrimSuffix(name, documentSuffix)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, documentSuffix)
		}
		used[name] = true
		names[g.Key] = name
	}
	return names
}
