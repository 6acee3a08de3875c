package cobranza

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// Engine agrupa registros por cliente lógico y agrega montos y vencimientos.
type Engine struct {
	// HoldingMerge une en un único grupo (clave TEL_) los CNPJs que comparten teléfono.
	// Desactivado, cada entidad legal se agrupa por su propia clave (DeriveEntityKey).
	HoldingMerge bool
}

// AssignKeys devuelve una copia de records con la clave lógica según la configuración del motor.
func (e Engine) AssignKeys(records []entity.BillingRecord) []entity.BillingRecord {
	out := make([]entity.BillingRecord, len(records))
	copy(out, records)
	for i := range out {
		if e.HoldingMerge {
			out[i].LogicalCustomerKey = DeriveKey(out[i])
		} else {
			out[i].LogicalCustomerKey = DeriveEntityKey(out[i])
		}
	}
	if e.HoldingMerge {
		out = ApplyHoldingMerge(out)
	}
	return out
}

// Group asigna claves y agrega. Cada registro termina en exactamente un grupo.
// Los grupos quedan en orden de primera aparición en la entrada.
func (e Engine) Group(records []entity.BillingRecord) []entity.CustomerGroup {
	keyed := e.AssignKeys(records)
	groups := Aggregate(keyed)
	if e.HoldingMerge {
		idx := BuildHoldingIndex(keyed)
		for i := range groups {
			if phone, ok := PhoneFromKey(groups[i].Key); ok && idx.IsHoldingPhone(phone) {
				groups[i].Holding = true
				groups[i].ContactPhone = phone
			}
		}
	}
	return groups
}

// Aggregate agrupa por LogicalCustomerKey ya asignada (una clave vacía se reemplaza por la de respaldo).
func Aggregate(records []entity.BillingRecord) []entity.CustomerGroup {
	order := make([]string, 0)
	members := make(map[string][]entity.BillingRecord)
	for _, r := range records {
		key := r.LogicalCustomerKey
		if key == "" {
			key = DeriveKey(r)
		}
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], r)
	}

	groups := make([]entity.CustomerGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, aggregateGroup(key, members[key]))
	}
	return groups
}

func aggregateGroup(key string, recs []entity.BillingRecord) entity.CustomerGroup {
	g := entity.CustomerGroup{
		Key:         key,
		MemberCount: len(recs),
		MemberRows:  make([]int, 0, len(recs)),
		TotalAmount: decimal.Zero,
	}
	seenTax := make(map[string]bool)
	for _, r := range recs {
		g.MemberRows = append(g.MemberRows, r.RowIndex)
		if r.AmountDue.Valid {
			g.TotalAmount = g.TotalAmount.Add(r.AmountDue.Decimal)
		}
		if g.DisplayName == "" {
			g.DisplayName = strings.TrimSpace(r.DisplayName)
		}
		if g.ContactPhone == "" {
			g.ContactPhone = strings.TrimSpace(r.ContactPhone)
		}
		if tax := strings.TrimSpace(r.TaxID); tax != "" && !seenTax[tax] {
			seenTax[tax] = true
			g.TaxIDs = append(g.TaxIDs, tax)
		}
		for _, u := range r.DocumentURLs {
			if u = strings.TrimSpace(u); u != "" {
				g.DocumentURLs = append(g.DocumentURLs, u)
			}
		}
	}
	g.DueDate = SummarizeDueDates(recs)
	return g
}

// SummarizeDueDates aplica la regla del conjunto de fechas distintas: una sola fecha → esa fecha;
// cualquier desacuerdo, incluida una fecha mezclada con ausencia, → centinela "datas variadas".
func SummarizeDueDates(recs []entity.BillingRecord) entity.DueDateSummary {
	distinct := make(map[string]int) // fecha formateada ("" = sin fecha) → índice del primer registro
	for i, r := range recs {
		k := ""
		if r.DueDate != nil {
			k = r.DueDate.Format(entity.DateLayout)
		}
		if _, ok := distinct[k]; !ok {
			distinct[k] = i
		}
	}
	if len(distinct) != 1 {
		return entity.DueDateSummary{Mixed: len(distinct) > 1}
	}
	for _, i := range distinct {
		if d := recs[i].DueDate; d != nil {
			date := *d
			return entity.DueDateSummary{Date: &date}
		}
	}
	return entity.DueDateSummary{}
}
