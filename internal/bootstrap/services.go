package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/sweeper"
	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data"
	httpx "github.com/thankyoudoc/thankyoudoc-api/internal/http"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Overrides     ports.OverrideStore
	Gate          *service.AccessGate
	Guards        *service.GuardRegistry
	RoleCache     *core.RoleCacheService
	RoleDirectory ports.RoleDirectory
	Doctors       *service.DoctorService
	Appointments  *service.AppointmentService
	RoleAdmin     *service.RoleService
	HealthChecks  map[string]httpx.HealthChecker
	Observability ObservabilityContainer
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Provider replaces the configured login provider when set.
	Provider ports.AuthProvider
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Doctors      *data.DoctorRepo
	Appointments *data.AppointmentRepo
	Roles        *data.RoleRepo
	Cache        *data.RedisCacheRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, client redis.UniversalClient, cache config.CacheConfig) *serviceRepositories {
	repos := &serviceRepositories{
		Doctors:      data.NewDoctorRepo(db),
		Appointments: data.NewAppointmentRepo(db),
		Roles:        data.NewRoleRepo(db),
	}
	if client != nil {
		repos.Cache = data.NewRedisCacheRepo(client, cache.KeyPrefix)
	}
	return repos
}

// NewServices wires repositories, the role directory, auth and the access gate.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return nil, errors.New("database connection is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	repos := buildRepositories(deps.DB, deps.RedisClient, cfg.Cache)
	obs := BuildObservability(logger, cfg.Observability.Metrics)
	obs.Alerts = BuildAlertSink(logger, cfg.Observability.Notify)

	roleCache := core.NewRoleCacheService(core.RoleCacheServiceOptions{
		Cache:  cacheRepository(repos.Cache),
		Roles:  repos.Roles,
		Config: core.RoleCacheConfig{TTL: cfg.Cache.RoleTTL},
		Logger: logger,
	})
	directory := DevRoleDirectory(cfg.Auth, roleCache, logger)

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:             cfg.Auth,
		RedisClient:      deps.RedisClient,
		Logger:           logger,
		ProviderOverride: deps.Provider,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth: %w", err)
	}

	gate := service.NewAccessGate(service.AccessGateOptions{
		Overrides: auth.Overrides,
		Sessions:  auth.Service,
		Roles:     directory,
		Recorder:  obs.Recorder,
		Logger:    logger,
	})

	appointments := service.NewAppointmentService(service.AppointmentServiceOptions{
		Repo:    repos.Appointments,
		Doctors: repos.Doctors,
		Logger:  logger,
	})

	return &ServiceContainer{
		Auth:          auth.Service,
		Overrides:     auth.Overrides,
		Gate:          gate,
		Guards:        service.NewGuardRegistry(gate),
		RoleCache:     roleCache,
		RoleDirectory: directory,
		Doctors:       service.NewDoctorService(service.DoctorServiceOptions{Repo: repos.Doctors}),
		Appointments:  appointments,
		RoleAdmin:     service.NewRoleService(service.RoleServiceOptions{Assigner: roleCache}),
		HealthChecks:  healthChecks(deps.DB, repos.Cache),
		Observability: obs,
	}, nil
}

// cacheRepository keeps a nil *RedisCacheRepo from becoming a non-nil interface.
//
//nolint:ireturn // core consumes the interface.
func cacheRepository(repo *data.RedisCacheRepo) core.CacheRepository {
	if repo == nil {
		return nil
	}
	return repo
}

func healthChecks(db *sql.DB, cache *data.RedisCacheRepo) map[string]httpx.HealthChecker {
	checks := map[string]httpx.HealthChecker{"postgres": db.PingContext}
	if cache != nil {
		checks["redis"] = cache.Health
	}
	return checks
}

// ServiceOrchestrationConfig contains everything needed to run the enabled services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and blocks until SIGINT,
// SIGTERM or the first service failure, then shuts everything down.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is incomplete")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices runs the enabled services until ctx is cancelled or one fails.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		group.Go(func() error {
			return ServeHTTP(gctx, ServeConfig{
				Server:          server,
				ShutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:          logger,
			})
		})
	}

	if enabled[config.ServiceModeSweeper] {
		runner, runnerErr := sweeper.NewRunner(sweeper.RunnerOptions{
			DB:      cfg.DB,
			Config:  cfg.Config.Sweeper,
			Logger:  logger,
			Alerts:  cfg.Services.Observability.Alerts,
			Metrics: cfg.Services.Observability.Sink,
		})
		if runnerErr != nil {
			return fmt.Errorf("create sweeper runner: %w", runnerErr)
		}
		group.Go(func() error {
			if runErr := runner.Run(gctx); runErr != nil {
				return fmt.Errorf("appointment sweeper: %w", runErr)
			}
			return nil
		})
	}

	err = group.Wait()
	if closeErr := cfg.Services.Observability.Close(); closeErr != nil {
		logger.Warn("close metrics sink failed", "error", closeErr)
	}
	if err != nil {
		return err
	}
	logger.Info("all services stopped")
	return nil
}
