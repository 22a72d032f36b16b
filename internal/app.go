// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	router "fintrack/internal/api"
	"fintrack/internal/api/handler"
	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/reconcile"
	"fintrack/internal/repository"
	"fintrack/internal/repository/postgres"
	"fintrack/internal/seed"
	"fintrack/internal/service"
	"fintrack/internal/util"
	"fintrack/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	CategoryRepository    repository.CategoryRepository
	ReportRepository      repository.ReportRepository

	// Services
	TransactionService service.TransactionService
	WalletService      service.WalletService
	CategoryService    service.CategoryService
	AuthService        service.AuthService
	ReportService      service.ReportService

	// Background jobs
	Scheduler *cron.Cron

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "env", cfg.Env)
	if cfg.DevJWTSecret {
		app.Logger.Warn("JWT_SECRET is not set, signing tokens with the development secret")
	}

	// 3. Connect to Database and migrate
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.Migrate(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	app.Logger.Info("Database migrations applied.")

	categories, err := seed.DefaultCategories()
	if err != nil {
		return fmt.Errorf("failed to load default categories: %w", err)
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.CategoryRepository = postgres.NewCategoryRepository()
	app.ReportRepository = postgres.NewReportRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	txRunner := service.NewTxRunner(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx)
	app.TransactionService = service.NewTransactionService(
		txRunner,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.CategoryRepository,
	)
	app.WalletService = service.NewWalletService(
		txRunner,
		app.DB,
		app.WalletRepository,
		app.CategoryRepository,
		app.TransactionService,
	)
	app.CategoryService = service.NewCategoryService(app.DB, app.CategoryRepository)
	app.AuthService = service.NewAuthService(
		txRunner,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.CategoryRepository,
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		categories,
	)
	app.ReportService = service.NewReportService(app.DB, app.ReportRepository)
	app.Logger.Info("Services initialized.")

	// 6. Schedule the balance audit
	app.Scheduler, err = reconcile.Schedule(reconcile.NewAuditor(app.DB, app.WalletRepository, app.Logger), cfg.ReconcileSchedule)
	if err != nil {
		return err
	}
	if app.Scheduler != nil {
		app.Scheduler.Start()
		app.Logger.Info("Balance audit scheduled.", "schedule", cfg.ReconcileSchedule)
	}

	// 7. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Auth:        handler.NewAuthHandler(app.AuthService, app.Logger),
		Wallet:      handler.NewWalletHandler(app.WalletService, app.Logger),
		Transaction: handler.NewTransactionHandler(app.TransactionService, app.Logger),
		Category:    handler.NewCategoryHandler(app.CategoryService, app.Logger),
		Report:      handler.NewReportHandler(app.ReportService, app.Logger),
	}, cfg.CORSAllowedOrigins)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Scheduler != nil {
		select {
		case <-app.Scheduler.Stop().Done():
		case <-ctx.Done():
			app.Logger.Warn("Balance audit still running at shutdown")
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
