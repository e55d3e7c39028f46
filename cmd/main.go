package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HA2077/SmartChef/internal/audit"
	"github.com/HA2077/SmartChef/internal/repositories"
	"github.com/HA2077/SmartChef/internal/scheduler"
	"github.com/HA2077/SmartChef/internal/service"
	"github.com/HA2077/SmartChef/internal/tui"
	"github.com/HA2077/SmartChef/models"
	"github.com/HA2077/SmartChef/pkg/envconfig"
	"github.com/HA2077/SmartChef/pkg/flags"
	"github.com/HA2077/SmartChef/pkg/logger"
	"github.com/HA2077/SmartChef/pkg/metrics"
)

func main() {
	// Parse command-line flags
	flagConfig := flags.Parse()

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stderr"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)
	defer appLogger.Close()

	if envErr != nil {
		appLogger.Debug("No .env file loaded", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appConfig := envconfig.LoadAppConfig()

	// Explicit flags win over environment configuration.
	flagDefaults := flags.DefaultConfig()
	if flagConfig.DataDir != flagDefaults.DataDir {
		appConfig.DataDir = flagConfig.DataDir
	}
	if flagConfig.PollInterval != flagDefaults.PollInterval {
		appConfig.PollInterval = flagConfig.PollInterval
	}
	if flagConfig.MetricsAddr != flagDefaults.MetricsAddr {
		appConfig.MetricsAddr = flagConfig.MetricsAddr
	}

	appLogger.Info("Starting SmartChef",
		"environment", loggerConfig.Environment,
		"data_dir", appConfig.DataDir,
		"poll_interval", appConfig.PollInterval)

	coordMetrics := metrics.New("smartchef")

	if appConfig.MetricsAddr != "" {
		go serveMetrics(appConfig.MetricsAddr, appLogger)
	}

	// Initialize repositories over the shared data directory.
	orderRepo := repositories.NewOrderStore(appLogger, appConfig.DataDir, coordMetrics)
	receiptRepo := repositories.NewReceiptStore(appLogger, appConfig.DataDir)
	menuRepo := repositories.NewMenuRepository(appLogger, appConfig.DataDir)
	userRepo := repositories.NewUserRepository(appLogger, appConfig.DataDir)
	reportRepo := repositories.NewReportRepository(orderRepo, receiptRepo, menuRepo, appLogger)

	var recorder audit.Recorder = audit.NopRecorder{}
	if appConfig.AuditDBPath != "" {
		auditLog, err := audit.Open(appConfig.AuditDBPath)
		if err != nil {
			appLogger.Warn("Audit log unavailable, continuing without it", "path", appConfig.AuditDBPath, "error", err)
		} else {
			defer auditLog.Close()
			recorder = auditLog
		}
	}

	// Initialize services.
	receiptService := service.NewReceiptService(receiptRepo, appConfig.TaxRate, appLogger)
	orderService := service.NewOrderService(orderRepo, menuRepo, receiptService, recorder, coordMetrics, appLogger)
	reportService := service.NewReportService(reportRepo, appLogger)

	sess, err := login(userRepo, flagConfig.Username)
	if err != nil {
		appLogger.Fatal("Login failed", "error", err)
	}
	appLogger.Info("Logged in", "user", sess.User.Username, "role", sess.User.Role)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if flagConfig.Headless {
		runHeadless(ctx, appConfig.PollInterval, orderService, reportService, sess, coordMetrics, appLogger)
		return
	}

	model := tui.New(sess, orderService, receiptService, reportService,
		menuRepo.GetAvailable, coordMetrics, appLogger, appConfig.PollInterval, appConfig.TipPercent)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		appLogger.Fatal("Dashboard terminated", "error", err)
	}
	appLogger.Info("Goodbye")
}

// login authenticates the operator named by --user. The password comes
// from SMARTCHEF_PASSWORD when set, otherwise from the terminal.
func login(users *repositories.UserRepository, username string) (*models.Session, error) {
	reader := bufio.NewReader(os.Stdin)

	if username == "" {
		fmt.Fprint(os.Stderr, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password := envconfig.GetEnv("SMARTCHEF_PASSWORD", "")
	if password == "" {
		fmt.Fprintf(os.Stderr, "Password for %s: ", username)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	return users.Authenticate(username, password)
}

// runHeadless keeps the polling loops alive without the dashboard, so a
// second terminal can watch the same data directory. Each tick rebuilds
// the kitchen queue and the status gauge from the store.
func runHeadless(ctx context.Context, interval time.Duration, orders service.OrderServiceInterface, reports service.ReportServiceInterface, sess *models.Session, coordMetrics *metrics.CoordinatorMetrics, appLogger *logger.Logger) {
	sched := scheduler.New(interval, appLogger)

	sched.Register("kitchen_queue", func() {
		queue, err := orders.KitchenQueue()
		if err != nil {
			appLogger.Warn("Kitchen queue refresh failed", "error", err)
			return
		}
		coordMetrics.ObserveRefresh("kitchen_queue")
		appLogger.Info("Kitchen queue", "active_orders", len(queue))
	})

	if sess.Can(models.CapViewReports) {
		sched.Register("status_counts", func() {
			statusCounts, err := reports.GetStatusCounts(sess)
			if err != nil {
				appLogger.Warn("Status count refresh failed", "error", err)
				return
			}
			coordMetrics.ObserveRefresh("status_counts")
			counts := make(map[string]int, len(statusCounts))
			for status, count := range statusCounts {
				counts[string(status)] = count
			}
			coordMetrics.SetOrdersByStatus(counts)
		})
	}

	sched.Start(ctx)
	appLogger.Info("Running headless", "poll_interval", interval)

	<-ctx.Done()
	sched.Stop()
	appLogger.Info("Shutdown complete")
}

func serveMetrics(addr string, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	appLogger.Info("Serving metrics", "address", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("Metrics server error", "error", err)
	}
}
