package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MixedDates valor centinela cuando los miembros de un grupo no coinciden en vencimiento.
const MixedDates = "datas variadas"

// DateLayout formato de fecha de salida (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// DueDateSummary resumen de vencimientos de un grupo.
type DueDateSummary struct {
	Date  *time.Time // única fecha compartida por todos los miembros
	Mixed bool       // miembros con fechas distintas (o fecha mezclada con ausencia)
}

// String devuelve la fecha DD/MM/YYYY, el centinela MixedDates, o "" si no hay fecha.
func (s DueDateSummary) String() string {
	if s.Mixed {
		return MixedDates
	}
	if s.Date == nil {
		return ""
	}
	return s.Date.Format(DateLayout)
}

// CustomerGroup unidad de agregación: todos los registros con la misma clave lógica.
// Inmutable una vez construido por el motor de agrupación.
type CustomerGroup struct {
	Key          string
	MemberCount  int
	MemberRows   []int // RowIndex de los miembros, en orden de entrada
	DisplayName  string
	ContactPhone string
	TaxIDs       []string // CNPJs distintos, en orden de aparición
	TotalAmount  decimal.Decimal
	DueDate      DueDateSummary
	DocumentURLs []string
	Holding      bool // agrupado por teléfono compartido entre CNPJs distintos
}
