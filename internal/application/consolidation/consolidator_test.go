package consolidation_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeFetcher struct {
	docs  map[string][]byte
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	d, ok := f.docs[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return d, nil
}

// fakeMerger concatena con "|" y rechaza cualquier parte que contenga CORRUPT.
type fakeMerger struct {
	calls int
}

func (m *fakeMerger) Merge(_ context.Context, docs [][]byte) ([]byte, error) {
	m.calls++
	for _, d := range docs {
		if bytes.Contains(d, []byte("CORRUPT")) {
			return nil, errors.New("pdf ilegible")
		}
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return bytes.Join(docs, []byte("|")), nil
}

func group(key string, urls ...string) entity.CustomerGroup {
	return entity.CustomerGroup{Key: key, MemberCount: 1, MemberRows: []int{0}, DocumentURLs: urls}
}

// ── descarga con fallas ───────────────────────────────────────────────────────

func TestConsolidate_DescargaFallidaSeOmite(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": []byte("D1"), "u3": []byte("D3")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("TEL_555", "u1", "u2", "u3"))

	assert.Equal(t, []string{"u1", "u2", "u3"}, fetcher.calls, "una descarga por URL, en orden y sin reintentos")
	assert.Equal(t, 3, res.AttemptedCount)
	assert.Equal(t, 2, res.FetchedCount)
	assert.Equal(t, 2, res.SucceededCount)
	assert.Equal(t, []byte("D1|D3"), res.MergedDocument)
	assert.Equal(t, entity.ConsolidationMergedPartial, res.State)
	assert.False(t, res.Degraded)
	require.Len(t, res.FetchFailures, 1)
	assert.Equal(t, 1, res.FetchFailures[0].Index)
	assert.Equal(t, "u2", res.FetchFailures[0].URL)
}

func TestConsolidate_DocumentoVacioCuentaComoFalla(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": {}, "u2": []byte("D2")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("K", "u1", "u2"))
	assert.Equal(t, 1, res.SucceededCount)
	assert.Len(t, res.FetchFailures, 1)
	assert.Equal(t, []byte("D2"), res.MergedDocument)
}

// ── unión degradada ───────────────────────────────────────────────────────────

func TestConsolidate_DocumentoCorruptoSeDescartaEnModoDegradado(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": []byte("D1"), "u2": []byte("CORRUPT")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("K", "u1", "u2"))

	assert.True(t, res.Degraded)
	assert.Equal(t, 2, res.FetchedCount)
	assert.Equal(t, 1, res.SucceededCount)
	assert.Equal(t, []byte("D1"), res.MergedDocument, "un único sobreviviente se entrega tal cual")
	assert.Equal(t, entity.ConsolidationMergedPartial, res.State)
	require.Len(t, res.SkippedDocuments, 1)
	assert.Equal(t, "u2", res.SkippedDocuments[0].URL)
}

func TestConsolidate_DegradadoConservaOrden(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"u1": []byte("D1"), "u2": []byte("CORRUPT"), "u3": []byte("D3"), "u4": []byte("D4"),
	}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("K", "u1", "u2", "u3", "u4"))
	assert.Equal(t, 3, res.SucceededCount)
	assert.Equal(t, []byte("D1|D3|D4"), res.MergedDocument)
}

func TestConsolidate_TodosCorruptosQuedaVacio(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": []byte("CORRUPT1"), "u2": []byte("CORRUPT2")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("K", "u1", "u2"))
	assert.Equal(t, entity.ConsolidationEmpty, res.State)
	assert.Equal(t, 0, res.SucceededCount)
	assert.False(t, res.HasDocument())
	assert.Len(t, res.SkippedDocuments, 2)
}

// ── casos borde ───────────────────────────────────────────────────────────────

func TestConsolidate_SinURLsQuedaVacioSinDescargar(t *testing.T) {
	fetcher := &fakeFetcher{}
	merger := &fakeMerger{}
	c := consolidation.NewConsolidator(fetcher, merger, nil)

	res := c.Consolidate(context.Background(), group("K"))
	assert.Equal(t, entity.ConsolidationEmpty, res.State)
	assert.Equal(t, 0, res.AttemptedCount)
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, 0, merger.calls)
}

func TestConsolidate_TodoCorrectoQuedaMerged(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": []byte("D1"), "u2": []byte("D2")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	res := c.Consolidate(context.Background(), group("K", "u1", "u2"))
	assert.Equal(t, entity.ConsolidationMerged, res.State)
	assert.Equal(t, 2, res.SucceededCount)
	assert.LessOrEqual(t, res.SucceededCount, res.AttemptedCount)
}

func TestConsolidateAll_GruposEnSecuencia(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{"a": []byte("A"), "b": []byte("B")}}
	c := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)

	results := c.ConsolidateAll(context.Background(), []entity.CustomerGroup{group("G1", "a"), group("G2", "b", "x")})

	require.Len(t, results, 2)
	assert.Equal(t, "G1", results[0].GroupKey)
	assert.Equal(t, "G2", results[1].GroupKey)
	assert.Equal(t, []string{"a", "b", "x"}, fetcher.calls, "un grupo termina antes de empezar el siguiente")
	assert.Equal(t, entity.ConsolidationMerged, results[0].State)
	assert.Equal(t, entity.ConsolidationMergedPartial, results[1].State)
}
