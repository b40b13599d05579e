package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/vitals/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a dataset or its results do not exist
var ErrNotFound = errors.New("not found")

// DatasetRepository defines the interface for dataset data operations
type DatasetRepository interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	// ClaimForProcessing moves a pending or failed dataset to processing and
	// reports false when another caller already holds it or it is completed
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.DatasetResults) error
	GetResults(ctx context.Context, datasetID uuid.UUID) (*models.DatasetResults, error)
}
