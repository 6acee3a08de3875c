package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
)

// PDFCPUMerger implementa consolidation.DocumentMerger con pdfcpu.
type PDFCPUMerger struct {
	conf *model.Configuration
}

var _ consolidation.DocumentMerger = (*PDFCPUMerger)(nil)

// NewPDFCPUMerger construye el merger con validación relajada y sin directorio de configuración en disco.
func NewPDFCPUMerger() *PDFCPUMerger {
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUMerger{conf: conf}
}

// Merge concatena docs en orden. Un único documento se valida y se devuelve sin cambios.
func (m *PDFCPUMerger) Merge(ctx context.Context, docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, errors.New("pdf: nada que unir")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		if err := api.Validate(bytes.NewReader(docs[0]), m.conf); err != nil {
			return nil, fmt.Errorf("pdf: documento inválido: %w", err)
		}
		return docs[0], nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, m.conf); err != nil {
		return nil, fmt.Errorf("pdf: unir %d documentos: %w", len(docs), err)
	}
	return out.Bytes(), nil
}
