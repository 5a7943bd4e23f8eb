package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/timesheet-management/internal/analytics/postgres"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authPostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	"github.com/frahmantamala/timesheet-management/internal/report"
	reportPostgres "github.com/frahmantamala/timesheet-management/internal/report/postgres"
	settingsPostgres "github.com/frahmantamala/timesheet-management/internal/settings/postgres"
	userPostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that delivers scheduled reports and weekly timesheet reminders.`,
	Run: func(cmd *cobra.Command, args []string) {
		startWorker()
	},
}

var (
	reportCheckInterval time.Duration
	reminderWeekday     int
	reminderHour        int
)

func startWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Configure(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer sqlxDB.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer, err := buildMailer(ctx, cfg.Mail, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build mailer: %v\n", err)
		os.Exit(1)
	}

	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	settingsRepo := settingsPostgres.NewSettingsRepository(gormDB)
	analyticsRepo := analyticsPostgres.NewAnalyticsRepository(gormDB)
	reportRepo := reportPostgres.NewReportRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, mailer, cfg.Security.BCryptCost)
	analyticsService := analytics.NewService(analyticsRepo, lg, cfg.Analytics.ExpectedHoursPerDay)
	reportService := report.NewService(reportRepo, analyticsService, authService, mailer, lg, cfg.Analytics.ExpectedHoursPerDay)

	eventBus := events.NewEventBus(lg)
	notificationService := notification.NewService(eventBus, mailer, userRepo, settingsRepo, lg)
	notificationService.Register()

	lg.Info("worker started",
		"report_check_interval", reportCheckInterval,
		"reminder_weekday", time.Weekday(reminderWeekday),
		"reminder_hour", reminderHour)

	reportTicker := time.NewTicker(reportCheckInterval)
	defer reportTicker.Stop()

	reminderTicker := time.NewTicker(time.Hour)
	defer reminderTicker.Stop()

	var lastReminderDay time.Time

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reportTicker.C:
			if err := reportService.DeliverDue(ctx, time.Now()); err != nil {
				lg.Error("scheduled report delivery failed", "error", err)
			}

		case now := <-reminderTicker.C:
			if now.Weekday() != time.Weekday(reminderWeekday) || now.Hour() != reminderHour {
				continue
			}
			day := now.Truncate(24 * time.Hour)
			if day.Equal(lastReminderDay) {
				continue
			}
			if err := notificationService.SendWeeklyReminders(ctx); err != nil {
				lg.Error("weekly reminder fan-out failed", "error", err)
				continue
			}
			lastReminderDay = day

		case sig := <-sigChan:
			lg.Info("received signal, shutting down worker", "signal", sig)
			cancel()
			lg.Info("worker shutdown complete")
			return
		}
	}
}

func init() {
	workerCmd.Flags().DurationVar(&reportCheckInterval, "report-interval", time.Minute, "How often to check for due scheduled reports")
	workerCmd.Flags().IntVar(&reminderWeekday, "reminder-weekday", int(time.Monday), "Weekday to send weekly reminders on (0=Sunday)")
	workerCmd.Flags().IntVar(&reminderHour, "reminder-hour", 9, "Hour of day to send weekly reminders")

	rootCmd.AddCommand(workerCmd)
}
