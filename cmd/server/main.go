package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/vitals/internal/api"
	"github.com/RMahshie/vitals/internal/config"
	"github.com/RMahshie/vitals/internal/processing"
	"github.com/RMahshie/vitals/internal/repository/postgres"
	"github.com/RMahshie/vitals/internal/resample"
	"github.com/RMahshie/vitals/internal/storage"
	"github.com/RMahshie/vitals/internal/waveform"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Server.Env == "dev" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Warn().Err(err).Msg("Database not reachable, dataset endpoints will fail until it is")
	}

	// Object storage
	s3Service, err := storage.New(context.Background(), cfg.AWS.Backend, storage.S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.AWS.Backend).Msg("Failed to initialize storage")
	}

	// Gap filling
	policy, err := resample.ParseAnomalyPolicy(cfg.Cleaning.AnomalyPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ANOMALY_POLICY")
	}
	origin := waveform.DefaultOrigin()
	origin.Unit = cfg.Cleaning.OriginUnit
	pipeline := processing.NewPipeline(
		waveform.Config{
			Origin: origin,
			Limits: waveform.Limits{Lower: cfg.Cleaning.LowerLimit, Upper: cfg.Cleaning.UpperLimit},
		},
		resample.WithInterval(cfg.Cleaning.NominalIntervalOverride),
		resample.WithMaxGapCount(cfg.Cleaning.MaxGapCount),
		resample.WithAnomalyPolicy(policy),
	)

	datasetRepo := postgres.NewPostgresDatasetRepository(db)
	processingSvc := processing.NewProcessingService(s3Service, datasetRepo, pipeline, cfg.Cleaning.CSVPath)

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Vitals API", api.Version)
	humaConfig.DocsPath = "/api/docs"
	humaConfig.OpenAPIPath = "/api/openapi"
	humaAPI := humachi.New(router, humaConfig)

	api.RegisterRoutes(humaAPI, s3Service, datasetRepo, processingSvc)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting Vitals API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("remote_ip", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
