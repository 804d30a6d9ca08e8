package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ivanoskov/premium_access_bot/internal/app"
	"github.com/ivanoskov/premium_access_bot/internal/bot"
	"github.com/ivanoskov/premium_access_bot/internal/config"
	"go.uber.org/fx"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fx.New(
		app.Options(cfg),
		fx.Invoke(startPolling),
	).Run()
}

// startPolling запускает long polling на время жизни приложения
func startPolling(lc fx.Lifecycle, b *bot.Bot, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := b.Start(ctx); err != nil {
					logger.Error("polling stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info("stopping long polling")
			cancel()
			b.Stop()
			return nil
		},
	})
}
