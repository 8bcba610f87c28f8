package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	httpx "github.com/thankyoudoc/thankyoudoc-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// BuildRouterServices maps the service container onto the router's dependencies.
func BuildRouterServices(cfg *HTTPServerConfig) httpx.RouterServices {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		CookieDomain:  appCfg.HTTP.CookieDomain,
		SecureCookies: appCfg.HTTP.CookieSecure,
		LoginPath:     appCfg.Auth.LoginPath,
		AccessWait:    appCfg.HTTP.AccessWait,
		Logger:        logger,
	}
	if svc := cfg.Services; svc != nil {
		if svc.Auth != nil {
			services.Auth = svc.Auth
		}
		if svc.Guards != nil {
			services.Access = svc.Guards
		}
		services.Roles = svc.RoleDirectory
		services.Doctors = svc.Doctors
		services.Appointments = svc.Appointments
		services.RoleAdmin = svc.RoleAdmin
		services.Metrics = svc.Observability.Handler
		services.HealthChecks = svc.HealthChecks
	}
	return services
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	addr := ""
	if cfg.Config != nil {
		addr = cfg.Config.HTTP.Addr
	}
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(BuildRouterServices(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeConfig contains dependencies for running and stopping the HTTP server.
type ServeConfig struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// ServeHTTP runs the server until ctx is cancelled, then shuts it down gracefully.
func ServeHTTP(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("http server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
		if err := cfg.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	return ShutdownHTTPServer(ShutdownConfig{
		Context: context.WithoutCancel(ctx),
		Server:  cfg.Server,
		Timeout: cfg.ShutdownTimeout,
		Logger:  logger,
	})
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
