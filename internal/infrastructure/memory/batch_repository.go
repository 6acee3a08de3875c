// Package memory guarda los lotes procesados en memoria del proceso.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación en memoria de BatchRepository (se pierde al reiniciar).
type BatchRepo struct {
	mu      sync.RWMutex
	batches map[string]*entity.Batch
}

// NewBatchRepository construye el repositorio vacío.
func NewBatchRepository() *BatchRepo {
	return &BatchRepo{batches: make(map[string]*entity.Batch)}
}

// Create guarda el lote. Un ID repetido devuelve domain.ErrDuplicate.
func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[batch.ID]; ok {
		return domain.ErrDuplicate
	}
	r.batches[batch.ID] = batch
	return nil
}

// GetByID devuelve (nil, nil) si el lote no existe.
func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batches[id], nil
}

// List devuelve los lotes del más reciente al más antiguo.
func (r *BatchRepo) List(_ context.Context, limit, offset int) ([]*entity.Batch, error) {
	r.mu.RLock()
	all := make([]*entity.Batch, 0, len(r.batches))
	for _, b := range r.batches {
		all = append(all, b)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []*entity.Batch{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Delete elimina el lote; domain.ErrNotFound si no existe.
func (r *BatchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.batches, id)
	return nil
}
