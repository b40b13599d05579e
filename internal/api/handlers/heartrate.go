package handlers

import (
	"context"
	"time"

	"github.com/RMahshie/vitals/internal/processing"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

// HeartRateHandler serves the cleaned recording and ad-hoc resampling
type HeartRateHandler struct {
	processingSvc processing.ProcessingService
}

// NewHeartRateHandler creates a new heart rate handler
func NewHeartRateHandler(processingSvc processing.ProcessingService) *HeartRateHandler {
	return &HeartRateHandler{processingSvc: processingSvc}
}

// GetHeartRates returns the configured recording as a padded timestamp -> value mapping
func (h *HeartRateHandler) GetHeartRates(ctx context.Context, _ *struct{}) (*models.HeartRatesResponse, error) {
	cleaned, err := h.processingSvc.CleanRecording(ctx)
	if err != nil {
		return nil, cleaningError("Failed to clean heart rate recording", err)
	}

	return &models.HeartRatesResponse{Body: cleaned.Readings}, nil
}

// GetSampledData returns the configured recording as a packed waveform
func (h *HeartRateHandler) GetSampledData(ctx context.Context, _ *struct{}) (*models.SampledDataResponse, error) {
	cleaned, err := h.processingSvc.CleanRecording(ctx)
	if err != nil {
		return nil, cleaningError("Failed to clean heart rate recording", err)
	}
	if cleaned.SampledDataErr != nil {
		return nil, cleaningError("Failed to pack heart rate waveform", cleaned.SampledDataErr)
	}

	return &models.SampledDataResponse{Body: cleaned.SampledData}, nil
}

// Resample pads a mapping supplied by the client
func (h *HeartRateHandler) Resample(ctx context.Context, req *models.ResampleRequest) (*models.ResampleResponse, error) {
	interval := time.Duration(req.Body.NominalIntervalSeconds) * time.Second
	log.Info().Int("readings", len(req.Body.Readings)).Dur("interval", interval).Msg("Resample request received")

	cleaned, err := h.processingSvc.CleanMapping(ctx, req.Body.Readings, interval)
	if err != nil {
		return nil, cleaningError("Failed to resample readings", err)
	}
	body := models.ResampleResponseBody{
		IntervalSeconds: int64(cleaned.Interval.Seconds()),
		InsertedCount:   cleaned.Inserted,
		AnomalyCount:    cleaned.Anomalies,
		Readings:        cleaned.Readings,
		SampledData:     cleaned.SampledData,
	}
	if cleaned.SampledDataErr != nil {
		log.Warn().Err(cleaned.SampledDataErr).Msg("Returning readings without waveform")
		body.SampledDataError = cleaned.SampledDataErr.Error()
	}

	return &models.ResampleResponse{Body: body}, nil
}

// cleaningError reports bad heart rate data as 422 and everything else as 500
func cleaningError(msg string, err error) error {
	if processing.IsDataError(err) {
		log.Warn().Err(err).Msg(msg)
		return huma.Error422UnprocessableEntity(err.Error())
	}
	log.Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}
