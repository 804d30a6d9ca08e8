package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ivanoskov/premium_access_bot/internal/app"
	"github.com/ivanoskov/premium_access_bot/internal/bot"
	"github.com/ivanoskov/premium_access_bot/internal/config"
	"go.uber.org/fx"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// updateHandler обрабатывает тело webhook-запроса от Telegram
type updateHandler interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fx.New(
		app.Options(cfg),
		fx.Provide(provideRouter),
		fx.Invoke(startServer),
	).Run()
}

func provideRouter(b *bot.Bot, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	return newRouter(b, cfg.WebhookSecret, logger)
}

func newRouter(handler updateHandler, secret string, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/telegram/webhook", func(c *gin.Context) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(secretHeader)), []byte(secret)) != 1 {
			logger.Warn("webhook request with invalid secret", "remote", c.ClientIP())
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		if err := handler.HandleWebhook(c.Request.Context(), body); err != nil {
			logger.Warn("invalid webhook update", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
			return
		}
		c.Status(http.StatusOK)
	})

	return r
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	srv := &http.Server{Addr: cfg.WebhookAddr, Handler: engine}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("webhook server listening", "addr", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("webhook server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping webhook server")
			return srv.Shutdown(ctx)
		},
	})
}
