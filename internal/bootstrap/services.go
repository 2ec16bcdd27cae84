package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ousseynou98/frontsurete-sub001/config"
	redisadapter "github.com/ousseynou98/frontsurete-sub001/internal/adapters/redis"
	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	httpx "github.com/ousseynou98/frontsurete-sub001/internal/http"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
	"github.com/redis/go-redis/v9"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	API      *apiclient.Client
	Auth     *service.AuthService
	Renderer *httpx.TemplateRenderer
	Storage  httpx.StorageFactory
	Keys     service.StorageKeys
	// Ready reports whether client storage is reachable.
	Ready func(ctx context.Context) error
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the API client, auth service, renderer and client storage.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	api, err := apiclient.New(apiclient.Options{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		LoginPath:        cfg.Auth.LoginPath,
		ErrorMessageExpr: cfg.API.ErrorMessageExpr,
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create api client: %w", err)
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:         cfg.Auth,
		API:          api,
		APILoginPath: cfg.API.LoginPath,
		Logger:       logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("load templates: %w", err)
	}

	client := deps.RedisClient
	return ServiceContainer{
		API:      api,
		Auth:     auth,
		Renderer: renderer,
		Storage:  RedisStorageFactory(client, cfg.Redis),
		Keys:     StorageKeys(cfg.Auth.StorageKeys),
		Ready: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}, nil
}

// RedisStorageFactory opens one Redis namespace per client id.
func RedisStorageFactory(client redis.UniversalClient, cfg config.RedisConfig) httpx.StorageFactory {
	return func(clientID string) (ports.Storage, error) {
		return redisadapter.NewStorage(redisadapter.StorageOptions{
			Client:   client,
			Prefix:   cfg.KeyPrefix,
			ClientID: clientID,
			TTL:      cfg.SessionTTL,
		})
	}
}

// StorageKeys maps configured key names onto the credential store's keys.
func StorageKeys(cfg config.StorageKeysConfig) service.StorageKeys {
	return service.StorageKeys{
		Token:          cfg.Token,
		Identity:       cfg.Identity,
		LegacyIdentity: cfg.LegacyIdentity,
	}
}

// AdminRoles normalizes configured role names.
func AdminRoles(raw []string) []domainauth.Role {
	roles := make([]domainauth.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, domainauth.NormalizeRole(r))
	}
	return roles
}

// ServiceOrchestrationConfig contains dependencies for running the server until shutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal is received or the server fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return waitForShutdown(shutdownConfig{
		ctx:        ctx,
		quit:       quit,
		errCh:      errCh,
		httpServer: server,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx        context.Context
	quit       <-chan os.Signal
	errCh      <-chan error
	httpServer *http.Server
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or server error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case <-cfg.quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(cfg shutdownConfig) error {
	return ShutdownHTTPServer(ShutdownConfig{
		Context: cfg.ctx,
		Server:  cfg.httpServer,
		Logger:  cfg.logger,
	})
}
