package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Notifier отправляет администратору сводку по непроверенным чекам
type Notifier interface {
	NotifyPendingDigest(ctx context.Context) error
}

// Scheduler запускает периодическое напоминание о чеках
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	logger   *slog.Logger
	schedule string
	timeout  time.Duration
}

func NewScheduler(notifier Notifier, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		notifier: notifier,
		logger:   logger,
		schedule: schedule,
		timeout:  30 * time.Second,
	}
}

// Start регистрирует задачу и запускает cron. Пустое расписание отключает напоминания.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("pending digest disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.RunDigest); err != nil {
		return fmt.Errorf("failed to schedule pending digest %q: %w", s.schedule, err)
	}
	s.logger.Info("scheduled pending digest", "schedule", s.schedule)

	s.cron.Start()
	return nil
}

func (s *Scheduler) RunDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.notifier.NotifyPendingDigest(ctx); err != nil {
		s.logger.Error("pending digest failed", "error", err)
	}
}

// Stop останавливает cron и ждет завершения запущенных задач
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
