package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api/handlers"
	"github.com/goyal-sidhant/Combinational-Sum/internal/config"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/jobs"
	"github.com/goyal-sidhant/Combinational-Sum/internal/repository"
	"github.com/goyal-sidhant/Combinational-Sum/internal/server"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/goyal-sidhant/Combinational-Sum/internal/storage"
	"github.com/goyal-sidhant/Combinational-Sum/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the combosum API server and background search worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	workspaceRepo := repository.NewWorkspaceRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	datasetRepo := repository.NewDatasetRepository(pool)
	runRepo := repository.NewRunRepository(pool)
	markRepo := repository.NewMarkRepository(pool)

	if cfg.InitWorkspaceName != "" {
		if err := bootstrapInitialWorkspace(ctx, cfg, workspaceRepo, apiKeyRepo); err != nil {
			return fmt.Errorf("failed to bootstrap initial workspace: %w", err)
		}
	}

	uuidGen := &service.DefaultUUIDGenerator{}

	authSvc := service.NewAuthService(workspaceRepo, apiKeyRepo, uuidGen)
	datasetSvc := service.NewDatasetService(datasetRepo)
	searchSvc := service.NewSearchService(datasetRepo, runRepo, markRepo,
		time.Duration(cfg.SearchTimeoutSeconds)*time.Second)
	markSvc := service.NewMarkService(datasetRepo, runRepo, markRepo)

	var uploadHandler *handlers.UploadHandler
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		uploadSvc := service.NewUploadService(s3Client, datasetSvc)
		uploadHandler = handlers.NewUploadHandler(uploadSvc)
	} else {
		uploadHandler = handlers.NewUploadHandler(&NoOpUploadService{})
	}

	searchProcessor := jobs.NewSearchWorker(searchSvc)
	searchWorker := jobs.NewWorker(searchProcessor, time.Duration(cfg.WorkerPollSeconds)*time.Second)
	go searchWorker.Start(ctx)
	log.Println("search worker started")

	routerCfg := server.RouterConfig{
		AuthValidator:  authSvc,
		DatasetHandler: handlers.NewDatasetHandler(datasetSvc),
		SearchHandler:  handlers.NewSearchHandler(searchSvc),
		RunHandler:     handlers.NewRunHandler(searchSvc),
		MarkHandler:    handlers.NewMarkHandler(markSvc),
		UploadHandler:  uploadHandler,
		AuthHandler:    handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	searchWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpUploadService answers upload routes when no object storage is configured.
type NoOpUploadService struct{}

func (s *NoOpUploadService) InitUpload(ctx context.Context, workspaceID, contentType string) (*service.InitUploadResult, error) {
	return nil, domain.ErrStorageDisabled
}

func (s *NoOpUploadService) CompleteUpload(ctx context.Context, input service.CompleteUploadInput) (*domain.Dataset, error) {
	return nil, domain.ErrStorageDisabled
}

func bootstrapInitialWorkspace(ctx context.Context, cfg *config.Config, workspaceRepo *repository.WorkspaceRepository, apiKeyRepo *repository.APIKeyRepository) error {
	ws, err := workspaceRepo.GetByName(ctx, cfg.InitWorkspaceName)
	if err != nil && err != domain.ErrWorkspaceNotFound {
		return fmt.Errorf("failed to check existing workspace: %w", err)
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(workspaceRepo, apiKeyRepo, uuidGen)

	if ws == nil {
		ws, err = authSvc.CreateWorkspace(ctx, cfg.InitWorkspaceName)
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		log.Printf("bootstrap: created workspace '%s' (id: %s)", ws.Name, ws.ID)
	} else {
		log.Printf("bootstrap: workspace '%s' already exists (id: %s)", ws.Name, ws.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid COMBOSUM_INIT_API_KEY format (expected 'csum_<64 hex chars>')")
		}

		existingKey, err := authSvc.GetAPIKeyByToken(ctx, cfg.InitAPIKey)
		if err == nil && existingKey != nil {
			log.Printf("bootstrap: API key already exists (id: %s)", existingKey.ID)
			return nil
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, ws.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
