package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RMahshie/vitals/internal/ingest"
	"github.com/RMahshie/vitals/internal/repository"
	"github.com/RMahshie/vitals/internal/storage"
	"github.com/RMahshie/vitals/internal/waveform"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ProcessingService interface {
	ProcessDataset(ctx context.Context, datasetID uuid.UUID) error
	CleanRecording(ctx context.Context) (*Cleaned, error)
	CleanMapping(ctx context.Context, m models.HeartRateMap, interval time.Duration) (*Cleaned, error)
}

type processingService struct {
	s3         storage.S3Service
	repository repository.DatasetRepository
	pipeline   *Pipeline
	csvPath    string // recording served by the heart rate endpoints
}

func NewProcessingService(s3Service storage.S3Service, repo repository.DatasetRepository, pipeline *Pipeline, csvPath string) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		pipeline:   pipeline,
		csvPath:    csvPath,
	}
}

// CleanRecording reloads the configured CSV on every call
func (s *processingService) CleanRecording(ctx context.Context) (*Cleaned, error) {
	series, err := ingest.LoadFile(s.csvPath)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.pipeline.Clean(series, 0)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", s.csvPath).Int("readings", len(series)).Int("inserted", cleaned.Inserted).Msg("Cleaned recording")
	return cleaned, nil
}

// CleanMapping pads a mapping posted by a client
func (s *processingService) CleanMapping(ctx context.Context, m models.HeartRateMap, interval time.Duration) (*Cleaned, error) {
	series, err := waveform.FromMapping(m)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Clean(series, interval)
}

func (s *processingService) ProcessDataset(ctx context.Context, datasetID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get dataset details
	dataset, err := s.repository.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}
	if dataset.CSVKey == nil {
		s.fail(ctx, datasetID, "Dataset has no uploaded file")
		return nil
	}

	// Step 3: Download from S3
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusProcessing, 20); err != nil {
		return err
	}
	data, err := s.s3.DownloadFile(ctx, *dataset.CSVKey)
	if err != nil {
		log.Error().Err(err).Str("datasetID", dataset.ID).Str("key", *dataset.CSVKey).Msg("Failed to download heart rate CSV")
		s.fail(ctx, datasetID, "Failed to download heart rate file")
		return nil // Don't return error, status is updated to failed
	}

	// Step 4: Parse and pad
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusProcessing, 50); err != nil {
		return err
	}
	series, err := ingest.LoadCSV(bytes.NewReader(data))
	if err != nil {
		s.fail(ctx, datasetID, err.Error())
		return nil
	}
	cleaned, err := s.pipeline.Clean(series, 0)
	if err != nil {
		s.fail(ctx, datasetID, err.Error())
		return nil
	}

	// Step 5: Upload the cleaned mapping
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusProcessing, 80); err != nil {
		return err
	}
	body, err := json.Marshal(cleaned.Readings)
	if err != nil {
		return fmt.Errorf("failed to encode cleaned series: %w", err)
	}
	cleanedKey := fmt.Sprintf("cleaned/%s.json", datasetID)
	if err := s.s3.UploadFile(ctx, cleanedKey, body, "application/json"); err != nil {
		log.Error().Err(err).Str("datasetID", dataset.ID).Msg("Failed to upload cleaned series")
		s.fail(ctx, datasetID, "Failed to store cleaned series")
		return nil
	}

	// Step 6: Store results
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusProcessing, 90); err != nil {
		return err
	}
	results := &models.DatasetResults{
		ID:              uuid.New().String(),
		DatasetID:       dataset.ID,
		IntervalSeconds: int64(cleaned.Interval.Seconds()),
		ReadingCount:    len(cleaned.Series),
		InsertedCount:   cleaned.Inserted,
		AnomalyCount:    cleaned.Anomalies,
		Readings:        cleaned.Readings,
		SampledData:     cleaned.SampledData,
		CleanedKey:      &cleanedKey,
		CreatedAt:       time.Now(),
	}
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 7: Mark complete
	if err := s.repository.UpdateStatus(ctx, datasetID, models.StatusCompleted, 100); err != nil {
		return err
	}

	log.Info().
		Str("datasetID", dataset.ID).
		Int("readings", len(series)).
		Int("inserted", cleaned.Inserted).
		Int("anomalies", cleaned.Anomalies).
		Dur("interval", cleaned.Interval).
		Msg("Dataset processed")
	return nil
}

func (s *processingService) fail(ctx context.Context, datasetID uuid.UUID, reason string) {
	if err := s.repository.UpdateError(ctx, datasetID, reason); err != nil {
		log.Error().Err(err).Str("datasetID", datasetID.String()).Msg("Failed to record dataset error")
	}
}
