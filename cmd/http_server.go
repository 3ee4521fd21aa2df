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
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/auth"
	"github.com/ptec-dev/audit-management/internal/cache"
	"github.com/ptec-dev/audit-management/internal/cache/cachefactory"
	"github.com/ptec-dev/audit-management/internal/menu"
	menuPostgres "github.com/ptec-dev/audit-management/internal/menu/postgres"
	"github.com/ptec-dev/audit-management/internal/portal"
	"github.com/ptec-dev/audit-management/internal/transport/rest"
	"github.com/ptec-dev/audit-management/internal/user"
	userPostgres "github.com/ptec-dev/audit-management/internal/user/postgres"
	"github.com/ptec-dev/audit-management/pkg/logger"
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
	Gorm   *gorm.DB
	Cache  cache.Store
	Portal portal.API
	Router *chi.Mux
	Logger *slog.Logger

	AuthHandler *auth.Handler
	UserHandler *user.Handler
	MenuHandler *menu.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Portal, deps.AuthHandler, deps.UserHandler, deps.MenuHandler, deps.Logger)

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
		if err := deps.Cache.Close(); err != nil {
			slog.Error("Cache close error", "error", err)
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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	store, err := cachefactory.Open(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	portalClient := portal.NewClient(portal.Config{
		BaseURL:         config.Portal.BaseURL,
		Source:          config.Portal.Source,
		LoginTimeout:    config.Portal.LoginTimeout,
		ValidateTimeout: config.Portal.ValidateTimeout,
	}, appLogger)

	issuer := auth.NewSessionIssuer(config.Session.Secret, config.Session.AccessTokenHorizon, config.Session.MaxAge)
	otpManager := auth.NewChallengeManager(store, config.Otp.ResendCooldown, appLogger)
	refresher := auth.NewRefreshCoordinator(portalClient, config.Session.RefreshDebounce, appLogger)
	authService := auth.NewService(portalClient, issuer, otpManager, refresher, config.Otp.MfaWindow, config.Otp.EmailWindow, appLogger)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, appLogger)

	menuRepo := menuPostgres.NewMenuRepository(gormDB)
	menuService := menu.NewService(menuRepo, appLogger)

	return &Dependencies{
		Config:      config,
		Logger:      appLogger,
		DB:          db,
		Gorm:        gormDB,
		Cache:       store,
		Portal:      portalClient,
		Router:      chi.NewRouter(),
		AuthHandler: auth.NewHandler(authService),
		UserHandler: user.NewHandler(userService),
		MenuHandler: menu.NewHandler(menuService),
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
