package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/memory"
)

func TestBatchRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewBatchRepository()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &entity.Batch{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	assert.ErrorIs(t, repo.Create(ctx, &entity.Batch{ID: "a"}), domain.ErrDuplicate)

	got, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)

	missing, err := repo.GetByID(ctx, "zz")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID, "más reciente primero")
	assert.Equal(t, "b", list[1].ID)

	list, err = repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), domain.ErrNotFound)
}
