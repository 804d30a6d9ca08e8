package repository

import (
	"context"
	"fmt"

	"github.com/ivanoskov/premium_access_bot/internal/model"
)

// Repository - архив изменений журнала подтверждений и платежей.
// Оперативное состояние живет в памяти, архив только дублирует записи.
type Repository interface {
	// Подтверждения
	SaveApproval(ctx context.Context, record model.ApprovalRecord) error

	// Платежи
	SavePayment(ctx context.Context, payment model.Payment) error

	Close() error
}

const (
	DriverNone     = "none"
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver      string
	SupabaseURL string
	SupabaseKey string
	SQLitePath  string
}

// New создает архив по имени драйвера. Пустой драйвер означает отсутствие архива.
func New(opts Options) (Repository, error) {
	switch opts.Driver {
	case "", DriverNone:
		return Discard{}, nil
	case DriverSupabase:
		return NewSupabaseRepository(opts.SupabaseURL, opts.SupabaseKey)
	case DriverSQLite:
		return NewSQLiteRepository(opts.SQLitePath)
	}
	return nil, fmt.Errorf("unknown archive driver %q", opts.Driver)
}

// Discard ничего не сохраняет
type Discard struct{}

func (Discard) SaveApproval(ctx context.Context, record model.ApprovalRecord) error { return nil }
func (Discard) SavePayment(ctx context.Context, payment model.Payment) error        { return nil }
func (Discard) Close() error                                                         { return nil }
