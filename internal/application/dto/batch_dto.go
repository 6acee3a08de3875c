package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchResponse lote procesado con sus grupos, para GET /api/batches/:id y POST /api/batches.
type BatchResponse struct {
	ID                 string          `json:"id"`
	SourceName         string          `json:"source_name"`
	CreatedAt          time.Time       `json:"created_at"`
	HoldingMerge       bool            `json:"holding_merge"`
	RecordCount        int             `json:"record_count"`
	GroupCount         int             `json:"group_count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	TotalFormatted     string          `json:"total_formatted"`
	DocumentsAttempted int             `json:"documents_attempted"`
	DocumentsIncluded  int             `json:"documents_included"`
	Warnings           []FieldWarning  `json:"warnings,omitempty"`
	Groups             []GroupResponse `json:"groups"`
}

// BatchListItem resumen de un lote en listados.
type BatchListItem struct {
	ID          string          `json:"id"`
	SourceName  string          `json:"source_name"`
	CreatedAt   time.Time       `json:"created_at"`
	RecordCount int             `json:"record_count"`
	GroupCount  int             `json:"group_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// GroupResponse grupo de cliente lógico con el resultado de su consolidación.
type GroupResponse struct {
	Key            string                `json:"key"`
	DisplayName    string                `json:"display_name,omitempty"`
	ContactPhone   string                `json:"contact_phone,omitempty"`
	TaxIDs         []string              `json:"tax_ids,omitempty"`
	Holding        bool                  `json:"holding"`
	MemberCount    int                   `json:"member_count"`
	MemberRows     []int                 `json:"member_rows"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	TotalFormatted string                `json:"total_formatted"`
	DueDate        string                `json:"due_date"`
	DocumentURLs   []string              `json:"document_urls"`
	Consolidation  ConsolidationResponse `json:"consolidation"`
}

// ConsolidationResponse contadores de la consolidación de documentos de un grupo.
type ConsolidationResponse struct {
	State            string            `json:"state"`
	Attempted        int               `json:"attempted"`
	Fetched          int               `json:"fetched"`
	Succeeded        int               `json:"succeeded"`
	Degraded         bool              `json:"degraded"`
	HasDocument      bool              `json:"has_document"`
	DocumentFile     string            `json:"document_file,omitempty"`
	FetchFailures    []DocumentFailure `json:"fetch_failures,omitempty"`
	SkippedDocuments []DocumentFailure `json:"skipped_documents,omitempty"`
}

// DocumentFailure documento no incluido en el PDF del grupo.
type DocumentFailure struct {
	Index  int    `json:"index"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// FieldWarning campo ilegible en la planilla (no fatal).
type FieldWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}
