package cobranza

import (
	"strconv"
	"strings"

	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// Prefijos de la clave lógica de cliente.
const (
	KeyPrefixPhone    = "TEL_"
	KeyPrefixID       = "ID_"
	KeyPrefixTaxID    = "CNPJ_"
	KeyPrefixFallback = "LINHA_"
)

// DeriveKey calcula la clave lógica con prioridad estricta:
// teléfono → ID de cliente → CNPJ → índice de fila.
// El teléfono va primero porque identifica el punto de contacto único de una holding.
func DeriveKey(r entity.BillingRecord) string {
	if p := strings.TrimSpace(r.ContactPhone); p != "" {
		return KeyPrefixPhone + p
	}
	if id := strings.TrimSpace(r.CustomerID); id != "" {
		return KeyPrefixID + id
	}
	if tax := strings.TrimSpace(r.TaxID); tax != "" {
		return KeyPrefixTaxID + tax
	}
	return fallbackKey(r.RowIndex)
}

// DeriveEntityKey clave por entidad legal, usada cuando la fusión de holdings está desactivada:
// ID de cliente → CNPJ → teléfono → índice de fila. Dos CNPJs que comparten teléfono quedan separados.
func DeriveEntityKey(r entity.BillingRecord) string {
	if id := strings.TrimSpace(r.CustomerID); id != "" {
		return KeyPrefixID + id
	}
	if tax := strings.TrimSpace(r.TaxID); tax != "" {
		return KeyPrefixTaxID + tax
	}
	if p := strings.TrimSpace(r.ContactPhone); p != "" {
		return KeyPrefixPhone + p
	}
	return fallbackKey(r.RowIndex)
}

func fallbackKey(rowIndex int) string {
	return KeyPrefixFallback + strconv.Itoa(rowIndex)
}

// PhoneFromKey devuelve el teléfono de una clave TEL_ (ok=false para otros prefijos).
func PhoneFromKey(key string) (string, bool) {
	if strings.HasPrefix(key, KeyPrefixPhone) {
		return strings.TrimPrefix(key, KeyPrefixPhone), true
	}
	return "", false
}
