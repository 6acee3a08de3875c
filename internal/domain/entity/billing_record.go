package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingRecord una fila normalizada de la planilla del ERP.
type BillingRecord struct {
	RowIndex           int    // posición (0-based) de la fila en la entrada
	LogicalCustomerKey string // clave de agrupación derivada (TEL_, ID_, CNPJ_, LINHA_)
	DisplayName        string
	CustomerID         string
	TaxID              string // CNPJ/CPF
	ContactPhone       string
	AmountDue          decimal.NullDecimal // Valid=false → no suma
	DueDate            *time.Time          // nil = sin fecha
	DocumentURLs       []string            // orden de columnas declarado, sin vacíos
}

// FieldWarning problema no fatal al interpretar un campo (monto o fecha).
type FieldWarning struct {
	RowIndex int    `json:"row_index"`
	Column   string `json:"column"`
	Value    string `json:"value"`
	Reason   string `json:"reason"`
}
