package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL.
// Tablas: consolidation_batches (1) → consolidation_groups (N).
type BatchRepo struct {
	pool *pgxpool.Pool
}

// NewBatchRepository construye el adaptador de persistencia para lotes.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepo {
	return &BatchRepo{pool: pool}
}

// Create persiste el lote y todos sus grupos en una transacción.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	warnings, err := json.Marshal(nonNil(batch.Warnings))
	if err != nil {
		return fmt.Errorf("serializar avisos: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO consolidation_batches (id, source_name, created_at, holding_merge, record_count, warnings)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		batch.ID, batch.SourceName, batch.CreatedAt, batch.HoldingMerge, batch.RecordCount, warnings,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}

	for i, g := range batch.Groups {
		if err := insertGroup(ctx, tx, batch.ID, i, g, batch.Results[g.Key]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertGroup(ctx context.Context, tx pgx.Tx, batchID string, pos int, g entity.CustomerGroup, res entity.ConsolidationResult) error {
	failures, err := json.Marshal(nonNil(res.FetchFailures))
	if err != nil {
		return fmt.Errorf("serializar fallas: %w", err)
	}
	skipped, err := json.Marshal(nonNil(res.SkippedDocuments))
	if err != nil {
		return fmt.Errorf("serializar descartes: %w", err)
	}
	rows := make([]int32, len(g.MemberRows))
	for i, v := range g.MemberRows {
		rows[i] = int32(v)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO consolidation_groups (
			batch_id, position, group_key, display_name, contact_phone, tax_ids, holding,
			member_rows, total_amount, due_date, mixed_dates, document_urls,
			state, attempted, fetched, succeeded, degraded, fetch_failures, skipped_documents, merged_document
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		batchID, pos, g.Key, g.DisplayName, g.ContactPhone, nonNil(g.TaxIDs), g.Holding,
		rows, g.TotalAmount, g.DueDate.Date, g.DueDate.Mixed, nonNil(g.DocumentURLs),
		string(res.State), res.AttemptedCount, res.FetchedCount, res.SucceededCount, res.Degraded,
		failures, skipped, res.MergedDocument,
	)
	if err != nil {
		return fmt.Errorf("insert group %s: %w", g.Key, err)
	}
	return nil
}

// GetByID obtiene un lote con sus grupos y documentos. (nil, nil) si no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil // un id que no es UUID nunca existe
	}
	query := `
		SELECT id, source_name, created_at, holding_merge, record_count, warnings
		FROM consolidation_batches WHERE id = $1`
	b, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if err := r.loadGroups(ctx, b, true); err != nil {
		return nil, err
	}
	return b, nil
}

// List lista lotes del más reciente al más antiguo, sin los PDFs consolidados.
func (r *BatchRepo) List(ctx context.Context, limit, offset int) ([]*entity.Batch, error) {
	query := `
		SELECT id, source_name, created_at, holding_merge, record_count, warnings
		FROM consolidation_batches
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	for _, b := range list {
		if err := r.loadGroups(ctx, b, false); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Delete elimina el lote (los grupos caen en cascada); domain.ErrNotFound si no existe.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM consolidation_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var (
		b        entity.Batch
		warnings []byte
	)
	if err := row.Scan(&b.ID, &b.SourceName, &b.CreatedAt, &b.HoldingMerge, &b.RecordCount, &warnings); err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &b.Warnings); err != nil {
			return nil, fmt.Errorf("leer avisos: %w", err)
		}
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// loadGroups completa Groups y Results; withDocuments=false omite merged_document.
func (r *BatchRepo) loadGroups(ctx context.Context, b *entity.Batch, withDocuments bool) error {
	docColumn := "NULL::bytea"
	if withDocuments {
		docColumn = "merged_document"
	}
	query := `
		SELECT group_key, display_name, contact_phone, tax_ids, holding, member_rows, total_amount,
		       due_date, mixed_dates, document_urls, state, attempted, fetched, succeeded, degraded,
		       fetch_failures, skipped_documents, ` + docColumn + `
		FROM consolidation_groups WHERE batch_id = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, b.ID)
	if err != nil {
		return fmt.Errorf("get groups: %w", err)
	}
	defer rows.Close()

	b.Groups = []entity.CustomerGroup{}
	b.Results = make(map[string]entity.ConsolidationResult)
	for rows.Next() {
		var (
			g                 entity.CustomerGroup
			res               entity.ConsolidationResult
			memberRows        []int32
			total             decimal.Decimal
			dueDate           *time.Time
			state             string
			failures, skipped []byte
		)
		if err := rows.Scan(
			&g.Key, &g.DisplayName, &g.ContactPhone, &g.TaxIDs, &g.Holding, &memberRows, &total,
			&dueDate, &g.DueDate.Mixed, &g.DocumentURLs, &state, &res.AttemptedCount, &res.FetchedCount,
			&res.SucceededCount, &res.Degraded, &failures, &skipped, &res.MergedDocument,
		); err != nil {
			return fmt.Errorf("scan group: %w", err)
		}
		g.TotalAmount = total
		g.MemberCount = len(memberRows)
		g.MemberRows = make([]int, len(memberRows))
		for i, v := range memberRows {
			g.MemberRows[i] = int(v)
		}
		if dueDate != nil {
			d := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
			g.DueDate.Date = &d
		}
		if err := unmarshalFailures(failures, &res.FetchFailures); err != nil {
			return err
		}
		if err := unmarshalFailures(skipped, &res.SkippedDocuments); err != nil {
			return err
		}
		res.GroupKey = g.Key
		res.State = entity.ConsolidationState(state)

		b.Groups = append(b.Groups, g)
		b.Results[g.Key] = res
	}
	return rows.Err()
}

func unmarshalFailures(raw []byte, dst *[]entity.DocumentFailure) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("leer fallas de documentos: %w", err)
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}

// nonNil evita NULL en columnas NOT NULL de arrays/JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
