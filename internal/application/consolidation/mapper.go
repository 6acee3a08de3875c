package consolidation

import (
	"github.com/jhoicas/Cobranzas-api/internal/application/dto"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// ToBatchResponse convierte un lote en su DTO de respuesta.
func ToBatchResponse(b *entity.Batch) dto.BatchResponse {
	attempted, succeeded := b.DocumentStats()
	total := b.TotalAmount()
	resp := dto.BatchResponse{
		ID:                 b.ID,
		SourceName:         b.SourceName,
		CreatedAt:          b.CreatedAt,
		HoldingMerge:       b.HoldingMerge,
		RecordCount:        b.RecordCount,
		GroupCount:         len(b.Groups),
		TotalAmount:        total,
		TotalFormatted:     money.FormatBRL(total),
		DocumentsAttempted: attempted,
		DocumentsIncluded:  succeeded,
		Groups:             make([]dto.GroupResponse, 0, len(b.Groups)),
	}
	for _, w := range b.Warnings {
		resp.Warnings = append(resp.Warnings, dto.FieldWarning{Row: w.RowIndex, Column: w.Column, Value: w.Value, Reason: w.Reason})
	}
	names := DocumentFileNames(b)
	for _, g := range b.Groups {
		resp.Groups = append(resp.Groups, toGroupResponse(g, b.Results[g.Key], names[g.Key]))
	}
	return resp
}

// ToBatchListItem resumen de un lote para listados.
func ToBatchListItem(b *entity.Batch) dto.BatchListItem {
	return dto.BatchListItem{
		ID:          b.ID,
		SourceName:  b.SourceName,
		CreatedAt:   b.CreatedAt,
		RecordCount: b.RecordCount,
		GroupCount:  len(b.Groups),
		TotalAmount: b.TotalAmount(),
	}
}

func toGroupResponse(g entity.CustomerGroup, res entity.ConsolidationResult, documentFile string) dto.GroupResponse {
	out := dto.GroupResponse{
		Key:            g.Key,
		DisplayName:    g.DisplayName,
		ContactPhone:   g.ContactPhone,
		TaxIDs:         g.TaxIDs,
		Holding:        g.Holding,
		MemberCount:    g.MemberCount,
		MemberRows:     g.MemberRows,
		TotalAmount:    g.TotalAmount,
		TotalFormatted: money.FormatBRL(g.TotalAmount),
		DueDate:        g.DueDate.String(),
		DocumentURLs:   g.DocumentURLs,
		Consolidation: dto.ConsolidationResponse{
			State:            string(res.State),
			Attempted:        res.AttemptedCount,
			Fetched:          res.FetchedCount,
			Succeeded:        res.SucceededCount,
			Degraded:         res.Degraded,
			HasDocument:      res.HasDocument(),
			DocumentFile:     documentFile,
			FetchFailures:    toFailures(res.FetchFailures),
			SkippedDocuments: toFailures(res.SkippedDocuments),
		},
	}
	return out
}

func toFailures(in []entity.DocumentFailure) []dto.DocumentFailure {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.DocumentFailure, len(in))
	for i, f := range in {
		out[i] = dto.DocumentFailure{Index: f.Index, URL: f.URL, Reason: f.Reason}
	}
	return out
}
