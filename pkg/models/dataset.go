package models

import (
	"time"
)

// Dataset statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateDatasetRequest represents a request to register a heart rate upload
type CreateDatasetRequest struct {
	Body struct {
		Label    string `json:"label" minLength:"1" maxLength:"100" required:"true" doc:"Human readable name of the recording"`
		FileSize int64  `json:"file_size" minimum:"1" maximum:"52428800" required:"true" doc:"CSV file size in bytes"`
		MimeType string `json:"mime_type" enum:"text/csv,application/csv,text/plain,application/vnd.ms-excel" required:"true" doc:"CSV file MIME type"`
	}
}

// CreateDatasetResponseBody is the body of the create dataset response
type CreateDatasetResponseBody struct {
	ID        string `json:"id" doc:"Dataset unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed URL for the CSV upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateDatasetResponse represents the response from creating a dataset
type CreateDatasetResponse struct {
	Body CreateDatasetResponseBody
}

// DatasetIDRequest addresses a single dataset
type DatasetIDRequest struct {
	ID string `path:"id" doc:"Dataset ID"`
}

// GetDatasetStatusResponseBody is the body of the status response
type GetDatasetStatusResponseBody struct {
	ID        string  `json:"id" doc:"Dataset ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Processing status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Processing progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	Error     *string `json:"error,omitempty" doc:"Failure reason when status is failed"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when processing completes"`
}

// GetDatasetStatusResponse represents the current status of a dataset
type GetDatasetStatusResponse struct {
	Body GetDatasetStatusResponseBody
}

// GetDatasetResultsResponseBody is the body of the results response
type GetDatasetResultsResponseBody struct {
	ID              string       `json:"id" doc:"Results ID"`
	DatasetID       string       `json:"dataset_id" doc:"Dataset ID"`
	IntervalSeconds int64        `json:"interval_seconds" doc:"Nominal sampling interval"`
	ReadingCount    int          `json:"reading_count" doc:"Readings in the padded series"`
	InsertedCount   int          `json:"inserted_count" doc:"Placeholders added for missing samples"`
	AnomalyCount    int          `json:"anomaly_count" doc:"Sub-nominal or out-of-order pairs passed through"`
	Readings        HeartRateMap `json:"readings" doc:"Padded series keyed by timestamp"`
	SampledData     *SampledData `json:"sampled_data,omitempty" doc:"Packed waveform of the padded series"`
	DownloadURL     string       `json:"download_url,omitempty" doc:"Pre-signed URL of the cleaned series"`
	CreatedAt       time.Time    `json:"created_at" doc:"When the results were stored"`
}

// GetDatasetResultsResponse represents the cleaned series of a dataset
type GetDatasetResultsResponse struct {
	Body GetDatasetResultsResponseBody
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Dataset is an uploaded heart rate recording (for internal use)
type Dataset struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CSVKey      *string    `json:"csv_s3_key,omitempty"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DatasetResults is the stored outcome of cleaning a dataset
type DatasetResults struct {
	ID              string       `json:"id"`
	DatasetID       string       `json:"dataset_id"`
	IntervalSeconds int64        `json:"interval_seconds"`
	ReadingCount    int          `json:"reading_count"`
	InsertedCount   int          `json:"inserted_count"`
	AnomalyCount    int          `json:"anomaly_count"`
	Readings        HeartRateMap `json:"readings"`
	SampledData     *SampledData `json:"sampled_data,omitempty"`
	CleanedKey      *string      `json:"cleaned_s3_key,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}
