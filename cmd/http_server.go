package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hrplatform/leave-management/internal"
	"github.com/hrplatform/leave-management/internal/auth"
	authPostgres "github.com/hrplatform/leave-management/internal/auth/postgres"
	"github.com/hrplatform/leave-management/internal/balance"
	balancePostgres "github.com/hrplatform/leave-management/internal/balance/postgres"
	"github.com/hrplatform/leave-management/internal/core/events"
	"github.com/hrplatform/leave-management/internal/department"
	departmentPostgres "github.com/hrplatform/leave-management/internal/department/postgres"
	"github.com/hrplatform/leave-management/internal/employee"
	employeePostgres "github.com/hrplatform/leave-management/internal/employee/postgres"
	"github.com/hrplatform/leave-management/internal/gcal"
	gcalPostgres "github.com/hrplatform/leave-management/internal/gcal/postgres"
	"github.com/hrplatform/leave-management/internal/holiday"
	holidayPostgres "github.com/hrplatform/leave-management/internal/holiday/postgres"
	"github.com/hrplatform/leave-management/internal/importer"
	"github.com/hrplatform/leave-management/internal/leave"
	leavePostgres "github.com/hrplatform/leave-management/internal/leave/postgres"
	"github.com/hrplatform/leave-management/internal/notification"
	"github.com/hrplatform/leave-management/internal/settings"
	settingsPostgres "github.com/hrplatform/leave-management/internal/settings/postgres"
	"github.com/hrplatform/leave-management/internal/transport"
	transportMiddleware "github.com/hrplatform/leave-management/internal/transport/middleware"
	"github.com/hrplatform/leave-management/internal/transport/rest"
	"github.com/hrplatform/leave-management/internal/user"
	"github.com/hrplatform/leave-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies holds everything the server and the scheduler share.
type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Logger   *slog.Logger
	EventBus *events.EventBus

	AuthService     *auth.Service
	BalanceService  *balance.Service
	LeaveService    *leave.Service
	EmployeeService *employee.Service
	UserService     *user.Service
	DeptService     *department.Service
	HolidayService  *holiday.Service
	ImportService   *importer.Service
	SettingsService *settings.Service
	CalendarService *gcal.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(transportMiddleware.RequestID)
	router.Use(transportMiddleware.LoggingMiddleware(deps.Logger))
	registerRoutes(router, deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func registerRoutes(router *chi.Mux, deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(deps.AuthService, deps.Logger),
		User:       user.NewHandler(base, deps.UserService),
		Leave:      leave.NewHandler(base, deps.LeaveService, deps.BalanceService),
		Employee:   employee.NewHandler(base, deps.EmployeeService),
		Department: department.NewHandler(base, deps.DeptService),
		Holiday:    holiday.NewHandler(base, deps.HolidayService),
		Importer:   importer.NewHandler(base, deps.ImportService),
		Settings:   settings.NewHandler(base, deps.SettingsService, deps.Config.Uploads.MaxSizeBytes),
	}
	if deps.CalendarService != nil {
		handlers.Calendar = gcal.NewHandler(base, deps.CalendarService)
	}

	rest.RegisterAllRoutes(router, deps.DB.DB, handlers, deps.Config.Uploads.Dir, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	authRepo := authPostgres.NewAuthRepository(gormDB)
	balanceRepo := balancePostgres.NewBalanceRepository(gormDB)
	leaveRepo := leavePostgres.NewLeaveRepository(gormDB)
	employeeRepo := employeePostgres.NewEmployeeRepository(gormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	holidayRepo := holidayPostgres.NewHolidayRepository(gormDB)
	settingsRepo := settingsPostgres.NewSettingsRepository(gormDB)
	calendarRepo := gcalPostgres.NewCalendarRepository(gormDB)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	holidayService := holiday.NewService(holidayRepo, lg)
	balanceService := balance.NewService(balanceRepo, holidayService, lg)
	authService := auth.NewService(authRepo, tokens, eventBus,
		config.Security.BCryptCost, config.Security.ResetTokenTTL, config.Security.InviteTTL, lg)
	leaveService := leave.NewService(leaveRepo, balanceService, eventBus, lg)
	employeeService := employee.NewService(employeeRepo, balanceService, authService, eventBus, lg)
	userService := user.NewService(employeeRepo, balanceService, lg)
	deptService := department.NewService(departmentRepo, lg)
	importService := importer.NewService(employeeService, deptService, leaveService, lg)
	settingsService := settings.NewService(settingsRepo, config.Uploads, lg)

	var mailer notification.Mailer
	if config.SMTP.Enabled {
		mailer = notification.NewSMTPMailer(config.SMTP, lg)
	} else {
		mailer = notification.NewNoopMailer(lg)
	}
	notification.NewSubscriber(mailer, employeeRepo, config.Server.BaseURL, lg).Register(eventBus)

	var calendarService *gcal.Service
	if config.GoogleOAuth.Enabled {
		calendarService = gcal.NewService(config.GoogleOAuth, calendarRepo, lg)
		gcal.NewSubscriber(calendarService, employeeRepo, calendarRepo, lg).Register(eventBus)
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Logger:   lg,
		EventBus: eventBus,

		AuthService:     authService,
		BalanceService:  balanceService,
		LeaveService:    leaveService,
		EmployeeService: employeeService,
		UserService:     userService,
		DeptService:     deptService,
		HolidayService:  holidayService,
		ImportService:   importService,
		SettingsService: settingsService,
		CalendarService: calendarService,
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
