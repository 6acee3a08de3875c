package cobranza

import (
	"strings"

	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// HoldingIndex mapeo bipartito teléfono ↔ CNPJ de las holdings de una entrada.
type HoldingIndex struct {
	// TaxIDsByPhone CNPJs distintos por teléfono, sólo teléfonos con 2 o más CNPJs.
	TaxIDsByPhone map[string][]string
	// CanonicalPhone CNPJ → teléfono de la holding a la que pertenece.
	CanonicalPhone map[string]string
}

// BuildHoldingIndex arma el índice en dos pasadas: teléfono → CNPJs, luego CNPJ → teléfono canónico.
// Un CNPJ presente en varias holdings queda en la primera que aparece en la entrada,
// así cada CNPJ tiene a lo sumo un teléfono canónico y no hay ciclos.
func BuildHoldingIndex(records []entity.BillingRecord) HoldingIndex {
	phoneOrder := make([]string, 0)
	byPhone := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, r := range records {
		phone, tax := strings.TrimSpace(r.ContactPhone), strings.TrimSpace(r.TaxID)
		if phone == "" || tax == "" {
			continue
		}
		if seen[phone] == nil {
			seen[phone] = make(map[string]bool)
			phoneOrder = append(phoneOrder, phone)
		}
		if !seen[phone][tax] {
			seen[phone][tax] = true
			byPhone[phone] = append(byPhone[phone], tax)
		}
	}

	idx := HoldingIndex{
		TaxIDsByPhone:  make(map[string][]string),
		CanonicalPhone: make(map[string]string),
	}
	for _, phone := range phoneOrder {
		if len(byPhone[phone]) < 2 {
			continue
		}
		idx.TaxIDsByPhone[phone] = byPhone[phone]
	}

	// Segunda pasada en orden de entrada para fijar el teléfono canónico de cada CNPJ.
	for _, r := range records {
		phone, tax := strings.TrimSpace(r.ContactPhone), strings.TrimSpace(r.TaxID)
		if phone == "" || tax == "" {
			continue
		}
		if _, holding := idx.TaxIDsByPhone[phone]; !holding {
			continue
		}
		if _, done := idx.CanonicalPhone[tax]; !done {
			idx.CanonicalPhone[tax] = phone
		}
	}
	return idx
}

// IsHoldingPhone indica si phone agrupa 2 o más CNPJs.
func (h HoldingIndex) IsHoldingPhone(phone string) bool {
	_, ok := h.TaxIDsByPhone[phone]
	return ok
}

// ApplyHoldingMerge devuelve una copia de records donde todo registro cuyo CNPJ pertenece a
// una holding pasa a la clave TEL_ del teléfono canónico. El resto conserva su clave.
// Sólo depende de teléfono y CNPJ, no de la clave previa: aplicarlo dos veces da el mismo resultado.
func ApplyHoldingMerge(records []entity.BillingRecord) []entity.BillingRecord {
	return applyHoldingIndex(records, BuildHoldingIndex(records))
}

func applyHoldingIndex(records []entity.BillingRecord, idx HoldingIndex) []entity.BillingRecord {
	out := make([]entity.BillingRecord, len(records))
	copy(out, records)
	for i := range out {
		tax := strings.TrimSpace(out[i].TaxID)
		if tax == "" {
			continue
		}
		if phone, ok := idx.CanonicalPhone[tax]; ok {
			out[i].LogicalCustomerKey = KeyPrefixPhone + phone
		}
	}
	return out
}
