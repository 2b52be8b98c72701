package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	authhttp "github.com/astrovaani/auth-service/internal/auth/handler/http"
	"github.com/astrovaani/auth-service/internal/auth/repository"
	"github.com/astrovaani/auth-service/internal/auth/service"
	"github.com/astrovaani/auth-service/internal/configs"
	"github.com/astrovaani/auth-service/internal/database"
	"github.com/astrovaani/auth-service/internal/middleware"
	"github.com/astrovaani/auth-service/internal/worker"
	"github.com/astrovaani/auth-service/pkg/logger"
	"github.com/astrovaani/auth-service/pkg/mail"
	"github.com/astrovaani/auth-service/pkg/sms"
)

const defaultPort = "8080"

type AppConfig struct {
	HTTPPort string
	AppEnv   string
}

func InitConfig() (*configs.Config, *AppConfig, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := configs.Load(os.Getenv("APP_ENV"))
	if err != nil {
		return nil, nil, nil, err
	}

	zapLog, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		return nil, nil, nil, err
	}

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = defaultPort
	}

	appConfig := &AppConfig{
		HTTPPort: httpPort,
		AppEnv:   os.Getenv("APP_ENV"),
	}

	return cfg, appConfig, zapLog, nil
}

func SetupDatabase(cfg *configs.Config) (*database.Database, *database.RedisCache, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	redisCache, redisErr := database.InitRedis(ctxWithTimeout, cfg)
	if redisErr != nil {
		db.Close()
		return nil, nil, redisErr
	}

	return db, redisCache, nil
}

func SetupServices(db *database.Database, redisCache *database.RedisCache, cfg *configs.Config, zapLog *zap.Logger) *service.AuthService {
	mailerService := mail.NewMailerService(cfg)
	smsDispatcher := sms.NewGatewayClient(
		cfg.SMS.GatewayURL,
		cfg.SMS.APIKey,
		cfg.SMS.SenderID,
		10*time.Second,
		3,
	)

	runTx := func(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error {
		return repository.WithTx(ctx, db.DB, fn)
	}

	return service.NewAuthService(
		db.DB,
		repository.NewManager(),
		runTx,
		cfg,
		redisCache,
		mailerService,
		smsDispatcher,
		zapLog,
	)
}

func StartLoginTelemetryWorker(ctx context.Context, redisCache *database.RedisCache, authService *service.AuthService, zapLog *zap.Logger) {
	w := worker.NewLoginTelemetryWorker(redisCache.RawClient(), authService, zapLog)
	go w.Start(ctx)
}

func SetupFiberApp(db *database.Database, authService *service.AuthService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "AstroVaani Auth Service",
		ProxyHeader:   fiber.HeaderXForwardedFor,
		CaseSensitive: true,
		ErrorHandler:  middleware.ErrorHandler,
	})

	app.Use(func(c *fiber.Ctx) error {
		if c.UserContext() == nil {
			c.SetUserContext(context.Background())
		}
		return c.Next()
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/live",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:8080,http://localhost:3000",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.HealthCheck(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("UNHEALTHY")
		}
		return c.SendString("OK")
	})

	app.Use(middleware.Authenticate(authService))

	authhttp.RegisterRoutes(app, authService)

	return app
}
