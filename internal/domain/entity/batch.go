package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch una ejecución del pipeline sobre una planilla.
type Batch struct {
	ID           string
	SourceName   string
	CreatedAt    time.Time
	HoldingMerge bool
	RecordCount  int
	Warnings     []FieldWarning
	Groups       []CustomerGroup
	Results      map[string]ConsolidationResult // por CustomerGroup.Key
}

// TotalAmount suma de los totales de todos los grupos.
func (b *Batch) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, g := range b.Groups {
		total = total.Add(g.TotalAmount)
	}
	return total
}

// DocumentStats devuelve (intentados, incluidos) sumando todos los grupos.
func (b *Batch) DocumentStats() (attempted, succeeded int) {
	for _, r := range b.Results {
		attempted += r.AttemptedCount
		succeeded += r.SucceededCount
	}
	return attempted, succeeded
}

// Group busca un grupo por clave.
func (b *Batch) Group(key string) (*CustomerGroup, bool) {
	for i := range b.Groups {
		if b.Groups[i].Key == key {
			return &b.Groups[i], true
		}
	}
	return nil, false
}
