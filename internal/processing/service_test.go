package processing

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RMahshie/vitals/internal/ingest"
	"github.com/RMahshie/vitals/internal/repository/postgres"
	"github.com/RMahshie/vitals/internal/resample"
	"github.com/RMahshie/vitals/internal/storage"
	"github.com/RMahshie/vitals/internal/waveform"
	"github.com/RMahshie/vitals/pkg/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const sampleCSV = `timestamp,value
2025-06-23T08:57:58.297356+00:00,60
2025-06-23T08:58:03.297356+00:00,61
2025-06-23T08:58:08.297356+00:00,62
2025-06-23T08:58:18.297356+00:00,63
`

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	args := m.Called(ctx, id)
	dataset, _ := args.Get(0).(*models.Dataset)
	return dataset, args.Error(1)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *mockRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *mockRepository) StoreResults(ctx context.Context, results *models.DatasetResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *mockRepository) GetResults(ctx context.Context, datasetID uuid.UUID) (*models.DatasetResults, error) {
	args := m.Called(ctx, datasetID)
	results, _ := args.Get(0).(*models.DatasetResults)
	return results, args.Error(1)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockS3) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockS3) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockS3) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func testPipeline() *Pipeline {
	return NewPipeline(waveform.Config{Origin: waveform.DefaultOrigin()})
}

func pendingDataset(id uuid.UUID) *models.Dataset {
	key := "heartrates/" + id.String() + ".csv"
	return &models.Dataset{ID: id.String(), Label: "night shift", Status: models.StatusPending, CSVKey: &key}
}

func TestProcessDataset(t *testing.T) {
	id := uuid.New()
	dataset := pendingDataset(id)

	repo := &mockRepository{}
	s3 := &mockS3{}
	repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, id).Return(dataset, nil)
	s3.On("DownloadFile", mock.Anything, *dataset.CSVKey).Return([]byte(sampleCSV), nil)
	s3.On("UploadFile", mock.Anything, "cleaned/"+id.String()+".json", mock.Anything, "application/json").Return(nil)
	repo.On("StoreResults", mock.Anything, mock.AnythingOfType("*models.DatasetResults")).Return(nil)
	repo.On("UpdateStatus", mock.Anything, id, models.StatusCompleted, 100).Return(nil)

	svc := NewProcessingService(s3, repo, testPipeline(), "")
	require.NoError(t, svc.ProcessDataset(context.Background(), id))

	repo.AssertExpectations(t)
	s3.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateError", mock.Anything, mock.Anything, mock.Anything)

	var stored *models.DatasetResults
	for _, call := range repo.Calls {
		if call.Method == "StoreResults" {
			stored = call.Arguments.Get(1).(*models.DatasetResults)
		}
	}
	require.NotNil(t, stored)
	assert.Equal(t, id.String(), stored.DatasetID)
	assert.Equal(t, int64(5), stored.IntervalSeconds)
	assert.Equal(t, 5, stored.ReadingCount)
	assert.Equal(t, 1, stored.InsertedCount)
	assert.Equal(t, "60 61 62 E 63", stored.SampledData.Data)
	assert.Equal(t, int64(5000), stored.SampledData.Period)
	require.NotNil(t, stored.CleanedKey)
	assert.Equal(t, "cleaned/"+id.String()+".json", *stored.CleanedKey)
}

func TestProcessDataset_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(id uuid.UUID, repo *mockRepository, s3 *mockS3)
		wantError bool
	}{
		{
			name: "download fails",
			setup: func(id uuid.UUID, repo *mockRepository, s3 *mockS3) {
				s3.On("DownloadFile", mock.Anything, mock.Anything).Return(nil, errors.New("no such key"))
				repo.On("UpdateError", mock.Anything, id, "Failed to download heart rate file").Return(nil)
			},
		},
		{
			name: "malformed csv",
			setup: func(id uuid.UUID, repo *mockRepository, s3 *mockS3) {
				s3.On("DownloadFile", mock.Anything, mock.Anything).Return([]byte("timestamp,value\nyesterday,60\n"), nil)
				repo.On("UpdateError", mock.Anything, id, mock.MatchedBy(func(msg string) bool {
					return msg != ""
				})).Return(nil)
			},
		},
		{
			name: "single reading",
			setup: func(id uuid.UUID, repo *mockRepository, s3 *mockS3) {
				s3.On("DownloadFile", mock.Anything, mock.Anything).Return([]byte("timestamp,value\n2025-06-23T08:57:58Z,60\n"), nil)
				repo.On("UpdateError", mock.Anything, id, mock.Anything).Return(nil)
			},
		},
		{
			name: "upload fails",
			setup: func(id uuid.UUID, repo *mockRepository, s3 *mockS3) {
				s3.On("DownloadFile", mock.Anything, mock.Anything).Return([]byte(sampleCSV), nil)
				s3.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
				repo.On("UpdateError", mock.Anything, id, "Failed to store cleaned series").Return(nil)
			},
		},
		{
			name: "database error while storing results",
			setup: func(id uuid.UUID, repo *mockRepository, s3 *mockS3) {
				s3.On("DownloadFile", mock.Anything, mock.Anything).Return([]byte(sampleCSV), nil)
				s3.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
				repo.On("StoreResults", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := &mockRepository{}
			s3 := &mockS3{}
			repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, mock.Anything).Return(nil)
			repo.On("GetByID", mock.Anything, id).Return(pendingDataset(id), nil)
			tt.setup(id, repo, s3)

			svc := NewProcessingService(s3, repo, testPipeline(), "")
			err := svc.ProcessDataset(context.Background(), id)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, id, models.StatusCompleted, 100)
		})
	}
}

func TestProcessDataset_MissingKey(t *testing.T) {
	id := uuid.New()
	repo := &mockRepository{}
	repo.On("UpdateStatus", mock.Anything, id, models.StatusProcessing, 10).Return(nil)
	repo.On("GetByID", mock.Anything, id).Return(&models.Dataset{ID: id.String()}, nil)
	repo.On("UpdateError", mock.Anything, id, "Dataset has no uploaded file").Return(nil)

	svc := NewProcessingService(&mockS3{}, repo, testPipeline(), "")
	require.NoError(t, svc.ProcessDataset(context.Background(), id))
	repo.AssertExpectations(t)
}

func TestCleanRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heart_rate.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	svc := NewProcessingService(&mockS3{}, &mockRepository{}, testPipeline(), path)
	cleaned, err := svc.CleanRecording(context.Background())
	require.NoError(t, err)

	require.Len(t, cleaned.Readings, 5)
	assert.Equal(t, "2025-06-23T08:58:13.297356+00:00", cleaned.Readings[3].Timestamp)
	assert.True(t, cleaned.Readings[3].Value.IsPlaceholder())
	assert.Equal(t, 5*time.Second, cleaned.Interval)
}

func TestCleanRecording_MissingFile(t *testing.T) {
	svc := NewProcessingService(&mockS3{}, &mockRepository{}, testPipeline(), filepath.Join(t.TempDir(), "absent.csv"))
	_, err := svc.CleanRecording(context.Background())
	require.Error(t, err)
	assert.False(t, IsDataError(err))
}

func TestCleanMapping(t *testing.T) {
	svc := NewProcessingService(&mockS3{}, &mockRepository{}, testPipeline(), "")
	m := models.HeartRateMap{
		{Timestamp: "2025-06-23T08:57:58.000000+00:00", Value: models.Measured(60)},
		{Timestamp: "2025-06-23T08:58:08.000000+00:00", Value: models.Measured(61)},
		{Timestamp: "2025-06-23T08:58:28.000000+00:00", Value: models.Measured(62)},
	}

	t.Run("detected interval", func(t *testing.T) {
		cleaned, err := svc.CleanMapping(context.Background(), m, 0)
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cleaned.Interval)
		assert.Equal(t, "60 61 E 62", cleaned.SampledData.Data)
	})

	t.Run("override interval", func(t *testing.T) {
		cleaned, err := svc.CleanMapping(context.Background(), m, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cleaned.Interval)
		assert.Equal(t, "60 E 61 E E E 62", cleaned.SampledData.Data)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := svc.CleanMapping(context.Background(), models.HeartRateMap{{Timestamp: "noon", Value: models.Measured(60)}}, 0)
		var malformed *ingest.MalformedRecordError
		require.ErrorAs(t, err, &malformed)
		assert.True(t, IsDataError(err))
	})

	t.Run("below limit without a lower limit", func(t *testing.T) {
		withL := append(models.HeartRateMap{}, m...)
		withL[1] = models.HeartRateEntry{Timestamp: withL[1].Timestamp, Value: models.Placeholder(models.CodeBelowLimit)}
		cleaned, err := svc.CleanMapping(context.Background(), withL, 0)
		require.NoError(t, err)

		// the mapping still carries the code, only the waveform is withheld
		assert.Equal(t, models.Placeholder(models.CodeBelowLimit), cleaned.Readings[1].Value)
		assert.Nil(t, cleaned.SampledData)
		var limit *waveform.MissingDetectionLimitError
		require.ErrorAs(t, cleaned.SampledDataErr, &limit)
		assert.True(t, IsDataError(cleaned.SampledDataErr))
	})
}

func TestPipeline_RejectPolicy(t *testing.T) {
	p := NewPipeline(waveform.Config{Origin: waveform.DefaultOrigin()},
		resample.WithInterval(5*time.Second),
		resample.WithAnomalyPolicy(resample.AnomalyReject))

	base := time.Date(2025, 6, 23, 8, 57, 58, 0, time.UTC)
	series := models.ReadingSeries{
		{Timestamp: base, Value: models.Measured(60)},
		{Timestamp: base.Add(2 * time.Second), Value: models.Measured(61)},
	}

	_, err := p.Clean(series, 0)
	var irregular *resample.IrregularIntervalError
	require.ErrorAs(t, err, &irregular)
	assert.True(t, IsDataError(err))
	assert.False(t, IsDataError(errors.New("connection refused")))
}

// TestProcessDataset_Integration runs the pipeline against real PostgreSQL and MinIO
func TestProcessDataset_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pg, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("vitals_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, pg.Terminate(ctx)) }()

	dbURL, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, minioContainer.Terminate(ctx)) }()

	minioURL, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	defer db.Close()

	migration, err := os.ReadFile("../../migrations/000001_create_datasets.up.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(migration))
	require.NoError(t, err)

	s3Service, err := storage.NewMinioService(ctx, storage.S3Config{
		Bucket:    "vitals-test-" + uuid.New().String()[:8],
		Endpoint:  minioURL,
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	repo := postgres.NewPostgresDatasetRepository(db)
	svc := NewProcessingService(s3Service, repo, testPipeline(), "")

	t.Run("completes", func(t *testing.T) {
		id := uuid.New()
		key := "heartrates/" + id.String() + ".csv"
		require.NoError(t, s3Service.UploadFile(ctx, key, []byte(sampleCSV), "text/csv"))
		require.NoError(t, repo.Create(ctx, &models.Dataset{
			ID: id.String(), Label: "integration", Status: models.StatusPending, CSVKey: &key,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))

		require.NoError(t, svc.ProcessDataset(ctx, id))

		dataset, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, dataset.Status)
		assert.Equal(t, 100, dataset.Progress)
		assert.NotNil(t, dataset.CompletedAt)

		results, err := repo.GetResults(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, results.InsertedCount)
		assert.Equal(t, "60 61 62 E 63", results.SampledData.Data)

		uploaded, err := s3Service.DownloadFile(ctx, *results.CleanedKey)
		require.NoError(t, err)
		assert.Contains(t, string(uploaded), `"2025-06-23T08:58:13.297356+00:00":"E"`)
	})

	t.Run("missing object fails the dataset", func(t *testing.T) {
		id := uuid.New()
		key := "heartrates/absent.csv"
		require.NoError(t, repo.Create(ctx, &models.Dataset{
			ID: id.String(), Label: "integration", Status: models.StatusPending, CSVKey: &key,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))

		require.NoError(t, svc.ProcessDataset(ctx, id))

		dataset, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, dataset.Status)
		require.NotNil(t, dataset.ErrorMsg)
	})
}
