package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/vitals/internal/processing"
	"github.com/RMahshie/vitals/internal/repository"
	"github.com/RMahshie/vitals/internal/storage"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiresIn = 15 * time.Minute

// DatasetHandler handles heart rate upload and processing requests
type DatasetHandler struct {
	repo          repository.DatasetRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(repo repository.DatasetRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *DatasetHandler {
	return &DatasetHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateDataset creates a new dataset and returns an upload URL
func (h *DatasetHandler) CreateDataset(ctx context.Context, req *models.CreateDatasetRequest) (*models.CreateDatasetResponse, error) {
	datasetID := uuid.New()
	csvKey := fmt.Sprintf("heartrates/%s.csv", datasetID)
	log.Info().Str("datasetID", datasetID.String()).Int64("fileSize", req.Body.FileSize).Str("mimeType", req.Body.MimeType).Msg("Creating new dataset")

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, csvKey, req.Body.MimeType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("File format not supported. Please upload a CSV file.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now()
	dataset := &models.Dataset{
		ID:        datasetID.String(),
		Label:     req.Body.Label,
		Status:    models.StatusPending,
		Progress:  0,
		CSVKey:    &csvKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(ctx, dataset); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create dataset", err)
	}

	log.Info().Str("datasetID", dataset.ID).Msg("Dataset created, returning upload URL")
	return &models.CreateDatasetResponse{
		Body: models.CreateDatasetResponseBody{
			ID:        dataset.ID,
			UploadURL: uploadURL,
			ExpiresIn: int(uploadURLExpiresIn.Seconds()),
		},
	}, nil
}

// GetDatasetStatus returns the current status of a dataset
func (h *DatasetHandler) GetDatasetStatus(ctx context.Context, req *models.DatasetIDRequest) (*models.GetDatasetStatusResponse, error) {
	datasetID, dataset, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var resultsID *string
	if dataset.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, datasetID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetDatasetStatusResponse{
		Body: models.GetDatasetStatusResponseBody{
			ID:        dataset.ID,
			Status:    dataset.Status,
			Progress:  dataset.Progress,
			Message:   statusMessage(dataset.Status, dataset.Progress),
			Error:     dataset.ErrorMsg,
			ResultsID: resultsID,
		},
	}, nil
}

// GetDatasetResults returns the cleaned series of a completed dataset
func (h *DatasetHandler) GetDatasetResults(ctx context.Context, req *models.DatasetIDRequest) (*models.GetDatasetResultsResponse, error) {
	datasetID, dataset, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if dataset.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Dataset not yet processed",
			fmt.Errorf("dataset status is %s", dataset.Status))
	}

	results, err := h.repo.GetResults(ctx, datasetID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	var downloadURL string
	if results.CleanedKey != nil {
		// the download link is optional
		downloadURL, err = h.s3Service.GenerateDownloadURL(ctx, *results.CleanedKey)
		if err != nil {
			log.Warn().Err(err).Str("datasetID", dataset.ID).Msg("Failed to sign cleaned series download")
		}
	}

	return &models.GetDatasetResultsResponse{
		Body: models.GetDatasetResultsResponseBody{
			ID:              results.ID,
			DatasetID:       results.DatasetID,
			IntervalSeconds: results.IntervalSeconds,
			ReadingCount:    results.ReadingCount,
			InsertedCount:   results.InsertedCount,
			AnomalyCount:    results.AnomalyCount,
			Readings:        results.Readings,
			SampledData:     results.SampledData,
			DownloadURL:     downloadURL,
			CreatedAt:       results.CreatedAt,
		},
	}, nil
}

// StartProcessing starts cleaning an uploaded file in the background
func (h *DatasetHandler) StartProcessing(ctx context.Context, req *models.DatasetIDRequest) (*models.StartProcessingResponse, error) {
	datasetID, dataset, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	claimed, err := h.repo.ClaimForProcessing(ctx, datasetID)
	if err != nil {
		log.Error().Err(err).Str("datasetID", dataset.ID).Msg("Failed to claim dataset")
		return nil, huma.Error500InternalServerError("Failed to start processing", err)
	}
	if !claimed {
		return nil, huma.Error409Conflict("Dataset already processed",
			fmt.Errorf("dataset status is %s", dataset.Status))
	}

	log.Info().Str("datasetID", dataset.ID).Msg("Starting background processing goroutine")
	go func() {
		bg := context.Background()
		if err := h.processingSvc.ProcessDataset(bg, datasetID); err != nil {
			log.Error().Err(err).Str("datasetID", datasetID.String()).Msg("Processing failed")
			if err := h.repo.UpdateError(bg, datasetID, fmt.Sprintf("Processing failed: %v", err)); err != nil {
				log.Error().Err(err).Str("datasetID", datasetID.String()).Msg("Failed to record processing error")
			}
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

func (h *DatasetHandler) lookup(ctx context.Context, rawID string) (uuid.UUID, *models.Dataset, error) {
	datasetID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, nil, huma.Error400BadRequest("Invalid dataset ID", err)
	}

	dataset, err := h.repo.GetByID(ctx, datasetID)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, nil, huma.Error404NotFound("Dataset not found", err)
	}
	if err != nil {
		return uuid.Nil, nil, huma.Error500InternalServerError("Failed to load dataset", err)
	}

	return datasetID, dataset, nil
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Waiting for upload to be processed..."
	case models.StatusProcessing:
		if progress < 25 {
			return "Starting..."
		} else if progress < 50 {
			return "Downloading heart rate file..."
		} else if progress < 80 {
			return "Filling gaps..."
		} else {
			return "Saving cleaned series..."
		}
	case models.StatusCompleted:
		return "Cleaning complete!"
	case models.StatusFailed:
		return "Cleaning failed. Please check the file and try again."
	default:
		return "Unknown status"
	}
}
