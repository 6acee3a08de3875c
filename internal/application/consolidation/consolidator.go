package consolidation

import (
	"context"
	"errors"

	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
)

var errEmptyDocument = errors.New("documento vacío")

// Consolidator descarga y une los documentos de cada grupo.
//
// Ciclo por grupo:
//
//	PENDING → FETCHING (un paso por URL, sin volver atrás) → MERGING → MERGED | MERGED_PARTIAL | EMPTY
//
// Las fallas de descarga y de unión nunca se propagan: se cuentan en el resultado.
type Consolidator struct {
	fetcher DocumentFetcher
	merger  DocumentMerger
	log     *logger.Logger
}

// NewConsolidator construye el consolidador inyectando descarga y unión.
func NewConsolidator(fetcher DocumentFetcher, merger DocumentMerger, log *logger.Logger) *Consolidator {
	if log == nil {
		log = logger.Nop()
	}
	return &Consolidator{fetcher: fetcher, merger: merger, log: log.Component("consolidator")}
}

type fetchedDoc struct {
	index int
	url   string
	data  []byte
}

// ConsolidateAll procesa los grupos en secuencia: un grupo termina (descarga y unión)
// antes de que empiece el siguiente. Los grupos ya deben estar completamente agregados.
func (c *Consolidator) ConsolidateAll(ctx context.Context, groups []entity.CustomerGroup) []entity.ConsolidationResult {
	out := make([]entity.ConsolidationResult, 0, len(groups))
	for _, g := range groups {
		out = append(out, c.Consolidate(ctx, g))
	}
	return out
}

// Consolidate descarga cada URL del grupo en orden (un intento, sin reintentos) y une
// los documentos obtenidos en el orden en que se descargaron.
func (c *Consolidator) Consolidate(ctx context.Context, group entity.CustomerGroup) entity.ConsolidationResult {
	res := entity.ConsolidationResult{
		GroupKey: group.Key,
		State:    entity.ConsolidationPending,
	}

	// ── FETCHING ──────────────────────────────────────────────────────────────
	res.State = entity.ConsolidationFetching
	docs := make([]fetchedDoc, 0, len(group.DocumentURLs))
	for i, url := range group.DocumentURLs {
		res.AttemptedCount++
		data, err := c.fetcher.Fetch(ctx, url)
		if err == nil && len(data) == 0 {
			err = errEmptyDocument
		}
		if err != nil {
			res.FetchFailures = append(res.FetchFailures, entity.DocumentFailure{Index: i, URL: url, Reason: err.Error()})
			c.log.Warn().Err(err).Str("group", group.Key).Str("url", url).Msg("descarga fallida, se omite")
			continue
		}
		docs = append(docs, fetchedDoc{index: i, url: url, data: data})
	}
	res.FetchedCount = len(docs)

	// ── MERGING ───────────────────────────────────────────────────────────────
	res.State = entity.ConsolidationMerging
	if len(docs) > 0 {
		merged, kept := c.merge(ctx, group.Key, docs, &res)
		if kept > 0 {
			res.MergedDocument = merged
			res.SucceededCount = kept
		}
	}

	res.State = terminalState(res)
	c.log.Info().
		Str("group", group.Key).
		Int("attempted", res.AttemptedCount).
		Int("succeeded", res.SucceededCount).
		Bool("degraded", res.Degraded).
		Str("state", string(res.State)).
		Msg("grupo consolidado")
	return res
}

// merge intenta la unión completa; si falla, pasa al modo degradado.
func (c *Consolidator) merge(ctx context.Context, key string, docs []fetchedDoc, res *entity.ConsolidationResult) ([]byte, int) {
	blobs := make([][]byte, len(docs))
	for i, d := range docs {
		blobs[i] = d.data
	}
	merged, err := c.merger.Merge(ctx, blobs)
	if err == nil && len(merged) > 0 {
		return merged, len(docs)
	}
	if err == nil {
		err = errEmptyDocument
	}
	c.log.Warn().Err(err).Str("group", key).Int("documents", len(docs)).Msg("unión completa fallida, uniendo documento a documento")
	res.Degraded = true
	return c.mergeDegraded(ctx, key, docs, res)
}

// mergeDegraded agrega los documentos uno a uno sobre el acumulado y descarta
// los que hacen fallar la unión. Un único documento sobreviviente se devuelve tal cual.
func (c *Consolidator) mergeDegraded(ctx context.Context, key string, docs []fetchedDoc, res *entity.ConsolidationResult) ([]byte, int) {
	var acc []byte
	var kept []fetchedDoc
	for _, d := range docs {
		parts := [][]byte{d.data}
		if acc != nil {
			parts = [][]byte{acc, d.data}
		}
		out, err := c.merger.Merge(ctx, parts)
		if err == nil && len(out) == 0 {
			err = errEmptyDocument
		}
		if err != nil {
			res.SkippedDocuments = append(res.SkippedDocuments, entity.DocumentFailure{Index: d.index, URL: d.url, Reason: err.Error()})
			c.log.Warn().Err(err).Str("group", key).Str("url", d.url).Msg("documento descartado en la unión")
			continue
		}
		acc = out
		kept = append(kept, d)
	}
	switch len(kept) {
	case 0:
		return nil, 0
	case 1:
		return kept[0].data, 1
	default:
		return acc, len(kept)
	}
}

func terminalState(res entity.ConsolidationResult) entity.ConsolidationState {
	switch {
	case res.SucceededCount == 0:
		return entity.ConsolidationEmpty
	case res.SucceededCount < res.AttemptedCount:
		return entity.ConsolidationMergedPartial
	default:
		return entity.ConsolidationMerged
	}
}
