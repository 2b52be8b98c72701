package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	server "github.com/astrovaani/auth-service/cmd"
)

func main() {
	cfg, appCfg, zapLog, err := server.InitConfig()
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}
	defer zapLog.Sync()

	db, redisCache, err := server.SetupDatabase(cfg)
	if err != nil {
		zapLog.Fatal("failed to setup storage", zap.Error(err))
	}
	defer db.Close()

	authService := server.SetupServices(db, redisCache, cfg, zapLog)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	server.StartLoginTelemetryWorker(workerCtx, redisCache, authService, zapLog)

	app := server.SetupFiberApp(db, authService)

	zapLog.Info("auth service listening",
		zap.String("port", appCfg.HTTPPort),
		zap.String("env", appCfg.AppEnv))
	if err := app.Listen(":" + appCfg.HTTPPort); err != nil {
		zapLog.Fatal("server exited", zap.Error(err))
	}
}
