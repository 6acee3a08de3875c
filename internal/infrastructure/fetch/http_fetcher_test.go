package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/fetch"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 contenido"))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	})
	mux.HandleFunc("/vacio", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/grande", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	})
	mux.HandleFunc("/lento", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("%PDF"))
	})
	mux.HandleFunc("/ua", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.UserAgent()))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_OK(t *testing.T) {
	srv := newServer(t)
	f := fetch.NewHTTPFetcher(fetch.Options{RequirePDF: true})

	body, err := f.Fetch(context.Background(), srv.URL+"/ok.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 contenido", string(body))
}

func TestFetch_StatusNo2xxEsError(t *testing.T) {
	srv := newServer(t)
	_, err := fetch.NewHTTPFetcher(fetch.Options{}).Fetch(context.Background(), srv.URL+"/no-existe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetch_RequirePDFRechazaHTML(t *testing.T) {
	srv := newServer(t)

	_, err := fetch.NewHTTPFetcher(fetch.Options{RequirePDF: true}).Fetch(context.Background(), srv.URL+"/html")
	assert.Error(t, err)

	body, err := fetch.NewHTTPFetcher(fetch.Options{}).Fetch(context.Background(), srv.URL+"/html")
	require.NoError(t, err, "sin RequirePDF cualquier cuerpo no vacío es válido")
	assert.NotEmpty(t, body)
}

func TestFetch_CuerpoVacioYLimiteDeTamano(t *testing.T) {
	srv := newServer(t)
	f := fetch.NewHTTPFetcher(fetch.Options{MaxBytes: 1024})

	_, err := f.Fetch(context.Background(), srv.URL+"/vacio")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/grande")
	assert.Error(t, err)
}

func TestFetch_Timeout(t *testing.T) {
	srv := newServer(t)
	f := fetch.NewHTTPFetcher(fetch.Options{Timeout: 50 * time.Millisecond})

	_, err := f.Fetch(context.Background(), srv.URL+"/lento")
	assert.Error(t, err)
}

func TestFetch_UserAgent(t *testing.T) {
	srv := newServer(t)
	body, err := fetch.NewHTTPFetcher(fetch.Options{UserAgent: "cobranzas/1.0"}).Fetch(context.Background(), srv.URL+"/ua")
	require.NoError(t, err)
	assert.Equal(t, "cobranzas/1.0", string(body))
}

func TestFetch_URLInvalida(t *testing.T) {
	_, err := fetch.NewHTTPFetcher(fetch.Options{}).Fetch(context.Background(), "://sin-esquema")
	assert.Error(t, err)
}
