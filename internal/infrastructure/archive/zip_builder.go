// Package archive empaqueta la exportación de un lote en un ZIP.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
)

// ZipBuilder implementa consolidation.ArchiveBuilder con archive/zip de la stdlib.
type ZipBuilder struct {
	now func() time.Time
}

var _ consolidation.ArchiveBuilder = (*ZipBuilder)(nil)

// NewZipBuilder construye el empaquetador.
func NewZipBuilder() *ZipBuilder {
	return &ZipBuilder{now: time.Now}
}

// Build empaqueta files en un ZIP en memoria, en el orden recibido.
// Los nombres son rutas relativas con "/"; un nombre repetido es un error.
func (b *ZipBuilder) Build(files []consolidation.ArchiveFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := b.now()
	seen := make(map[string]bool, len(files))

	for _, f := range files {
		name := path.Clean(strings.TrimLeft(f.Name, "/"))
		if name == "." || strings.HasPrefix(name, "../") {
			return nil, fmt.Errorf("zip: nombre inválido %q", f.Name)
		}
		if seen[name] {
			return nil, fmt.Errorf("zip: entrada duplicada %s", name)
		}
		seen[name] = true

		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("zip: crear entrada %s: %w", name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip: escribir %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}
