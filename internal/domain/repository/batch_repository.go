package repository

import (
	"context"

	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia de lotes procesados.
// No ofrece garantías de durabilidad más allá de las del adaptador.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	// GetByID devuelve (nil, nil) si el lote no existe.
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Batch, error)
	Delete(ctx context.Context, id string) error
}
