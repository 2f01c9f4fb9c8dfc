package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/app"
	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/database"
	"github.com/platemenu/platemenu/internal/health"
	"github.com/platemenu/platemenu/internal/http/handler"
	"github.com/platemenu/platemenu/internal/http/router"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/security"
	"github.com/platemenu/platemenu/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

// TelemetrySet brings up the OTel runtime and derives the app logger from it.
var TelemetrySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

// PlatformSet covers stateful backends: database, redis, menu cache,
// readiness probes.
var PlatformSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideMenuCacheStore,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewPasscodeRepository,
	repository.NewRestaurantRepository,
	repository.NewCategoryRepository,
	repository.NewDishRepository,
)

var ServiceSet = wire.NewSet(
	provideTokenManager,
	service.NewTokenService,
	service.NewUserService,
	service.NewRestaurantService,
	service.NewMenuService,
	provideMailer,
	provideOTPService,
	wire.Bind(new(service.OTPServiceInterface), new(*service.OTPService)),
	wire.Bind(new(service.UserServiceInterface), new(*service.UserService)),
	wire.Bind(new(service.RestaurantServiceInterface), new(*service.RestaurantService)),
	wire.Bind(new(service.MenuServiceInterface), new(*service.MenuService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewRestaurantHandler,
	provideStorageService,
	handler.NewMenuHandler,
	handler.NewPublicHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func (m *MigrationRunner) Seed(demoEmail string) (*database.SeedReport, error) {
	if err := database.Migrate(m.db); err != nil {
		return nil, err
	}
	return database.Seed(m.db, demoEmail)
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.MenuCacheEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideMenuCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.MenuCacheStore {
	if cfg.MenuCacheEnabled && redisClient != nil {
		return service.NewRedisMenuCacheStore(redisClient, "public_menu")
	}
	return service.NewNoopMenuCacheStore()
}

func provideStorageService(cfg *config.Config) (service.StorageService, error) {
	if !cfg.StorageEnabled {
		return nil, nil
	}
	svc, err := service.NewMinIOStorageService(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageUseSSL)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func provideTokenManager(cfg *config.Config) *security.TokenManager {
	return security.NewTokenManager(cfg.SessionTokenIssuer, cfg.SessionTokenSecret)
}

func provideMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	if cfg.MailProvider == "resend" {
		return service.NewResendMailer(nil, cfg.ResendAPIKey, cfg.MailFrom)
	}
	return service.NewLogMailer(logger)
}

func provideOTPService(
	cfg *config.Config,
	passcodeRepo repository.PasscodeRepository,
	userRepo repository.UserRepository,
	tokenSvc *service.TokenService,
	mailer service.Mailer,
	logger *slog.Logger,
) *service.OTPService {
	return service.NewOTPService(cfg, passcodeRepo, userRepo, tokenSvc, mailer, logger)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	restaurantHandler *handler.RestaurantHandler,
	menuHandler *handler.MenuHandler,
	publicHandler *handler.PublicHandler,
	tokens *security.TokenManager,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		RestaurantHandler: restaurantHandler,
		MenuHandler:       menuHandler,
		PublicHandler:     publicHandler,
		TokenManager:      tokens,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.MenuCacheEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
