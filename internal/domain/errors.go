package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrNoDocuments  = errors.New("el grupo no tiene documento consolidado")
)

// SchemaError indica columnas obligatorias ausentes en la planilla.
// Es el único error que aborta el procesamiento de un archivo completo.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("columnas obligatorias ausentes: %s", strings.Join(e.Missing, ", "))
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *SchemaError) Unwrap() error { return ErrInvalidInput }
