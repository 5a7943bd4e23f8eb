package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/timesheet-management/internal/analytics/postgres"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authPostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/department"
	departmentPostgres "github.com/frahmantamala/timesheet-management/internal/department/postgres"
	"github.com/frahmantamala/timesheet-management/internal/mail"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	"github.com/frahmantamala/timesheet-management/internal/report"
	reportPostgres "github.com/frahmantamala/timesheet-management/internal/report/postgres"
	"github.com/frahmantamala/timesheet-management/internal/settings"
	settingsPostgres "github.com/frahmantamala/timesheet-management/internal/settings/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	userPostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	ctx := context.Background()
	cfg := deps.Config
	lg := deps.Logger

	if err := swagger.ValidateSpec(ctx, "./api/openapi.yml"); err != nil {
		return err
	}

	mailer, err := buildMailer(ctx, cfg.Mail, lg)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus(lg)

	// Repositories
	authRepo := authPostgres.NewRepository(deps.GormDB)
	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(deps.GormDB)
	entryRepo := timesheetPostgres.NewEntryRepository(deps.GormDB)
	analyticsRepo := analyticsPostgres.NewAnalyticsRepository(deps.GormDB)
	settingsRepo := settingsPostgres.NewSettingsRepository(deps.GormDB)
	reportRepo := reportPostgres.NewReportRepository(deps.GormDB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, mailer, cfg.Security.BCryptCost)
	userService := user.NewService(userRepo, mailer, lg, cfg.Security.BCryptCost)
	departmentService := department.NewService(departmentRepo, lg)
	timesheetService := timesheet.NewService(entryRepo, lg)
	analyticsService := analytics.NewService(analyticsRepo, lg, cfg.Analytics.ExpectedHoursPerDay)
	settingsService := settings.NewService(settingsRepo, lg)
	reportService := report.NewService(reportRepo, analyticsService, authService, mailer, lg, cfg.Analytics.ExpectedHoursPerDay)

	notificationService := notification.NewService(eventBus, mailer, userRepo, settingsRepo, lg)
	notificationService.Register()

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Department:   department.NewHandler(departmentService),
		Timesheet:    timesheet.NewHandler(timesheetService),
		Analytics:    analytics.NewHandler(analyticsService),
		Settings:     settings.NewHandler(settingsService),
		Report:       report.NewHandler(reportService),
		Notification: notification.NewHandler(notificationService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, splitOrigins(cfg.Server.AllowedOrigins), lg)
	return nil
}

func buildMailer(ctx context.Context, cfg internal.MailConfig, lg *slog.Logger) (mail.Mailer, error) {
	if !cfg.Enabled {
		return mail.NewNopMailer(lg), nil
	}
	return mail.NewSESMailer(ctx, cfg.Region, cfg.Sender, lg)
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, internal.NewExternalError("database unreachable", internal.ErrCodeStoreUnavailable, err)
	}

	return dbConn, nil
}
