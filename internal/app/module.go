package app

import (
	"context"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/bot"
	"github.com/ivanoskov/premium_access_bot/internal/charts"
	"github.com/ivanoskov/premium_access_bot/internal/config"
	"github.com/ivanoskov/premium_access_bot/internal/repository"
	"github.com/ivanoskov/premium_access_bot/internal/scheduler"
	"github.com/ivanoskov/premium_access_bot/internal/service"
	"github.com/ivanoskov/premium_access_bot/internal/store"
	"github.com/ivanoskov/premium_access_bot/internal/translate"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Options собирает все зависимости бота. Конфигурация передается уже загруженной.
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		Module,
	)
}

var Module = fx.Options(
	fx.Provide(
		provideLogger,
		provideTelegramClient,
		provideStore,
		provideRepository,
		provideTranslator,
		provideSubscriptions,
		charts.NewChartGenerator,
		provideBot,
		provideScheduler,
	),
	fx.Invoke(func(*scheduler.Scheduler) {}),
)

func provideLogger(cfg *config.Config) *slog.Logger {
	logger := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

func provideTelegramClient(cfg *config.Config, logger *slog.Logger) (bot.Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	logger.Info("authorized on telegram", "username", api.Self.UserName)
	return api, nil
}

func provideStore(lc fx.Lifecycle) *store.Store {
	st := store.New()
	lc.Append(fx.StopHook(st.Close))
	return st
}

func provideRepository(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (service.Repository, error) {
	repo, err := repository.New(repository.Options{
		Driver:      cfg.ArchiveDriver,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("archive ready", "driver", cfg.ArchiveDriver)
	lc.Append(fx.StopHook(repo.Close))
	return repo, nil
}

func provideTranslator(cfg *config.Config, logger *slog.Logger) (*translate.Translator, error) {
	if cfg.TranslateAPIKey == "" {
		logger.Info("translation disabled, replies are sent in English")
		return translate.New(nil, logger), nil
	}
	backend, err := translate.NewGoogleBackend(context.Background(), cfg.TranslateAPIKey)
	if err != nil {
		return nil, err
	}
	return translate.New(backend, logger), nil
}

func provideSubscriptions(st *store.Store, repo service.Repository, logger *slog.Logger, cfg *config.Config) *service.Subscriptions {
	return service.NewSubscriptions(st, repo, logger, service.Options{
		AdminID: cfg.AdminID,
		Pricing: service.Pricing{USDPerStar: cfg.USDPerStar, MaxStars: cfg.MaxStars},
		Replay:  service.ReplayPolicy(cfg.PaymentReplay),
	})
}

func provideBot(client bot.Client, svc *service.Subscriptions, translator *translate.Translator, chartGen *charts.ChartGenerator, logger *slog.Logger, cfg *config.Config) *bot.Bot {
	return bot.NewBot(client, svc, translator, chartGen, logger, bot.Options{
		GroupID:         cfg.GroupID,
		Layout:          cfg.MenuLayout,
		DefaultLanguage: cfg.DefaultLanguage,
	})
}

func provideScheduler(lc fx.Lifecycle, b *bot.Bot, logger *slog.Logger, cfg *config.Config) *scheduler.Scheduler {
	s := scheduler.NewScheduler(b, logger, cfg.PendingDigestSchedule)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-s.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return s
}
