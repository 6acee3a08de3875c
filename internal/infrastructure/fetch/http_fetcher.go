// Package fetch descarga los documentos referenciados en la planilla.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
)

const (
	// DefaultTimeout tiempo máximo por descarga.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBytes tamaño máximo de un documento (32 MB).
	DefaultMaxBytes int64 = 32 << 20
)

var pdfMagic = []byte("%PDF")

// Options parámetros del HTTPFetcher.
type Options struct {
	Timeout    time.Duration
	MaxBytes   int64
	RequirePDF bool // rechaza cuerpos que no empiezan con %PDF
	UserAgent  string
}

// HTTPFetcher descarga documentos por HTTP GET: un intento, sin reintentos.
// Usa net/http de la stdlib.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

var _ consolidation.DocumentFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher construye el cliente con el timeout por descarga indicado (15 s por defecto).
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// Fetch descarga url. Un status fuera de 2xx, un cuerpo vacío o mayor que MaxBytes es un error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: crear request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: leer cuerpo: %w", err)
	}
	if int64(len(body)) > f.opts.MaxBytes {
		return nil, fmt.Errorf("fetch: documento supera %d bytes", f.opts.MaxBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch: GET %s: cuerpo vacío", url)
	}
	if f.opts.RequirePDF && !bytes.HasPrefix(bytes.TrimLeft(body, "\r\n\t "), pdfMagic) {
		return nil, fmt.Errorf("fetch: GET %s: la respuesta no es un PDF", url)
	}
	return body, nil
}
