package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RMahshie/vitals/internal/repository"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/google/uuid"
)

// PostgresDatasetRepository implements DatasetRepository for PostgreSQL
type PostgresDatasetRepository struct {
	db *sql.DB
}

// NewPostgresDatasetRepository creates a new PostgreSQL dataset repository
func NewPostgresDatasetRepository(db *sql.DB) repository.DatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

// Create inserts a new dataset record
func (r *PostgresDatasetRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	query := `
		INSERT INTO datasets (id, label, status, progress, csv_s3_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		dataset.ID,
		dataset.Label,
		dataset.Status,
		dataset.Progress,
		dataset.CSVKey,
		dataset.CreatedAt,
		dataset.UpdatedAt)

	return err
}

// GetByID retrieves a dataset by ID
func (r *PostgresDatasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	query := `
		SELECT id, label, status, progress, csv_s3_key, error_message, created_at, updated_at, completed_at
		FROM datasets
		WHERE id = $1`

	var dataset models.Dataset
	var csvKey, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dataset.ID,
		&dataset.Label,
		&dataset.Status,
		&dataset.Progress,
		&csvKey,
		&errorMsg,
		&dataset.CreatedAt,
		&dataset.UpdatedAt,
		&completedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if csvKey.Valid {
		dataset.CSVKey = &csvKey.String
	}
	if errorMsg.Valid {
		dataset.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		dataset.CompletedAt = &completedAt.Time
	}

	return &dataset, nil
}

// UpdateStatus updates the status and progress of a dataset
func (r *PostgresDatasetRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE datasets
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// ClaimForProcessing atomically takes a pending or failed dataset into processing
func (r *PostgresDatasetRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE datasets
		SET status = 'processing', progress = 0, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'failed')`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim dataset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim dataset: %w", err)
	}
	return rows == 1, nil
}

// UpdateError marks a dataset as failed with a reason
func (r *PostgresDatasetRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE datasets
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreResults stores the cleaned series of a dataset
func (r *PostgresDatasetRepository) StoreResults(ctx context.Context, results *models.DatasetResults) error {
	readings, err := json.Marshal(results.Readings)
	if err != nil {
		return fmt.Errorf("failed to marshal readings: %w", err)
	}

	var sampled []byte
	if results.SampledData != nil {
		sampled, err = json.Marshal(results.SampledData)
		if err != nil {
			return fmt.Errorf("failed to marshal sampled data: %w", err)
		}
	}

	query := `
		INSERT INTO dataset_results (id, dataset_id, interval_seconds, reading_count, inserted_count,
		                             anomaly_count, readings, sampled_data, cleaned_s3_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.DatasetID,
		results.IntervalSeconds,
		results.ReadingCount,
		results.InsertedCount,
		results.AnomalyCount,
		string(readings),
		nullableJSON(sampled),
		results.CleanedKey,
		results.CreatedAt)

	return err
}

// GetResults retrieves the cleaned series of a dataset
func (r *PostgresDatasetRepository) GetResults(ctx context.Context, datasetID uuid.UUID) (*models.DatasetResults, error) {
	query := `
		SELECT id, dataset_id, interval_seconds, reading_count, inserted_count, anomaly_count,
		       readings, sampled_data, cleaned_s3_key, created_at
		FROM dataset_results
		WHERE dataset_id = $1`

	var results models.DatasetResults
	var readings string
	var sampled, cleanedKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, datasetID).Scan(
		&results.ID,
		&results.DatasetID,
		&results.IntervalSeconds,
		&results.ReadingCount,
		&results.InsertedCount,
		&results.AnomalyCount,
		&readings,
		&sampled,
		&cleanedKey,
		&results.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for dataset %s: %w", datasetID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	// readings is stored as json (not jsonb) so key order survives the round trip
	if err := json.Unmarshal([]byte(readings), &results.Readings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal readings: %w", err)
	}
	if sampled.Valid {
		var sd models.SampledData
		if err := json.Unmarshal([]byte(sampled.String), &sd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sampled data: %w", err)
		}
		results.SampledData = &sd
	}
	if cleanedKey.Valid {
		results.CleanedKey = &cleanedKey.String
	}

	return &results, nil
}

func nullableJSON(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: len(b) > 0}
}
