package batch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/media-exporter/internal/model"
)

var ErrBatchNotFound = errors.New("batch not found")

type Repository struct {
	db *dbpg.DB
}

func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateBatch inserts a new batch record in pending state.
func (r *Repository) CreateBatch(ctx context.Context, b model.Batch) error {
	query := `
		INSERT INTO batches (id, profile, quality, status)
		VALUES ($1, $2, $3, $4)
   `

	_, err := r.db.ExecContext(ctx, query, b.ID, b.Profile, b.Quality, model.BatchPending)
	if err != nil {
		return fmt.Errorf("create: failed to save batch: %w", err)
	}

	return nil
}

// UpdateResult stores the terminal state of a batch together with its
// per-asset outcomes and the archive object path.
func (r *Repository) UpdateResult(ctx context.Context, id uuid.UUID, status, archivePath string, outcomes []model.ProcessingOutcome) error {
	data, err := json.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("update: failed to marshal outcomes: %w", err)
	}

	query := `
		UPDATE batches
		SET status = $2, archive_path = $3, outcomes = $4, updated_at = now()
		WHERE id = $1
    `

	rows, err := r.db.ExecContext(ctx, query, id, status, archivePath, data)
	if err != nil {
		return fmt.Errorf("update: failed to update batch: %w", err)
	}

	n, err := rows.RowsAffected()
	if err != nil {
		return fmt.Errorf("update: failed to get number of rows affected: %w", err)
	}
	if n == 0 {
		return ErrBatchNotFound
	}

	return nil
}

// GetBatch loads a batch with its outcomes.
func (r *Repository) GetBatch(ctx context.Context, id uuid.UUID) (model.Batch, error) {
	query := `
		SELECT profile, quality, status, COALESCE(archive_path, ''), COALESCE(outcomes, '[]')
		FROM batches
		WHERE id = $1
    `

	var b model.Batch
	b.ID = id

	var outcomes []byte
	err := r.db.Master.QueryRowContext(ctx, query, id).
		Scan(&b.Profile, &b.Quality, &b.Status, &b.ArchivePath, &outcomes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Batch{}, ErrBatchNotFound
		}

		return model.Batch{}, fmt.Errorf("get: failed to get batch: %w", err)
	}

	if err := json.Unmarshal(outcomes, &b.Outcomes); err != nil {
		return model.Batch{}, fmt.Errorf("get: failed to unmarshal outcomes: %w", err)
	}

	return b, nil
}
