package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RMahshie/vitals/internal/api/handlers"
	"github.com/RMahshie/vitals/internal/processing"
	"github.com/RMahshie/vitals/internal/repository"
	"github.com/RMahshie/vitals/internal/storage"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/danielgtaylor/huma/v2"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, datasetRepo repository.DatasetRepository, processingSvc processing.ProcessingService) {
	// Initialize handlers
	heartRateHandler := handlers.NewHeartRateHandler(processingSvc)
	datasetHandler := handlers.NewDatasetHandler(datasetRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = Version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	// Register heart rate routes
	huma.Register(api, huma.Operation{
		OperationID: "getHeartRates",
		Method:      http.MethodGet,
		Path:        "/api/heartrates",
		Summary:     "Get cleaned heart rates",
		Description: "Returns the configured recording as a timestamp to heart rate mapping with gaps filled by E placeholders",
		Tags:        []string{"Heart Rate"},
	}, heartRateHandler.GetHeartRates)

	huma.Register(api, huma.Operation{
		OperationID: "getHeartRateSampledData",
		Method:      http.MethodGet,
		Path:        "/api/heartrates/sampled-data",
		Summary:     "Get heart rate waveform",
		Description: "Returns the configured recording as a packed SampledData waveform",
		Tags:        []string{"Heart Rate"},
	}, heartRateHandler.GetSampledData)

	huma.Register(api, huma.Operation{
		OperationID:  "resampleHeartRates",
		Method:       http.MethodPost,
		Path:         "/api/heartrates/resample",
		Summary:      "Fill gaps in a heart rate series",
		Description:  "Pads a posted timestamp to heart rate mapping to a uniform interval",
		Tags:         []string{"Heart Rate"},
		MaxBodyBytes: 50 * 1024 * 1024,
	}, heartRateHandler.Resample)

	// Register dataset routes
	huma.Register(api, huma.Operation{
		OperationID: "createDataset",
		Method:      http.MethodPost,
		Path:        "/api/datasets",
		Summary:     "Create a new dataset",
		Description: "Creates a dataset record and returns an upload URL for its CSV file",
		Tags:        []string{"Dataset"},
	}, datasetHandler.CreateDataset)

	huma.Register(api, huma.Operation{
		OperationID: "getDatasetStatus",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}/status",
		Summary:     "Get dataset status",
		Description: "Returns the current status and progress of a dataset",
		Tags:        []string{"Dataset"},
	}, datasetHandler.GetDatasetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getDatasetResults",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}/results",
		Summary:     "Get dataset results",
		Description: "Returns the cleaned series of a processed dataset",
		Tags:        []string{"Dataset"},
	}, datasetHandler.GetDatasetResults)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/datasets/{id}/process",
		Summary:     "Start processing dataset",
		Description: "Starts cleaning an uploaded heart rate file",
		Tags:        []string{"Dataset"},
	}, datasetHandler.StartProcessing)
}
