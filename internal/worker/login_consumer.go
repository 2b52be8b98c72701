// Package worker hosts the background consumers that keep request handling
// off the hot path.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/internal/auth/service"
)

// LoginTelemetryWorker consumes the login-event stream and applies the
// last-login timestamp, IP, and failed-attempt reset to the user row.
type LoginTelemetryWorker struct {
	redisClient *redis.Client
	authService *service.AuthService
	log         *zap.Logger
}

func NewLoginTelemetryWorker(redisClient *redis.Client, authService *service.AuthService, log *zap.Logger) *LoginTelemetryWorker {
	return &LoginTelemetryWorker{
		redisClient: redisClient,
		authService: authService,
		log:         log,
	}
}

func (w *LoginTelemetryWorker) Start(ctx context.Context) {
	lastID := "0"

	for {
		select {
		case <-ctx.Done():
			w.log.Info("login telemetry worker shutting down")
			return
		default:
			streams, err := w.redisClient.XRead(ctx, &redis.XReadArgs{
				Streams: []string{service.LoginStreamKey, lastID},
				Block:   5 * time.Second,
			}).Result()

			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Warn("error reading login event stream", zap.Error(err))
					time.Sleep(time.Second)
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					w.handleMessage(ctx, msg)
					lastID = msg.ID
				}
			}
		}
	}
}

func (w *LoginTelemetryWorker) handleMessage(ctx context.Context, msg redis.XMessage) {
	eventString, ok := msg.Values["event"].(string)
	if !ok {
		return
	}

	var loginEvent service.LoginEvent
	if err := json.Unmarshal([]byte(eventString), &loginEvent); err != nil {
		w.log.Warn("failed to unmarshal login event", zap.Error(err))
		return
	}

	if loginEvent.EventType != "user_last_login" {
		return
	}

	if err := w.authService.UpdateLastLogin(ctx, loginEvent.UserID, loginEvent.IPAddress, loginEvent.Timestamp); err != nil {
		w.log.Error("failed to update last login",
			zap.Int64("user_id", loginEvent.UserID), zap.Error(err))
	}
}
