package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ivanoskov/premium_access_bot/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type approvalRow struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (approvalRow) TableName() string { return approvalsTable }

type paymentRow struct {
	ID               string `gorm:"primaryKey"`
	InvoiceID        string `gorm:"index"`
	UserID           int64  `gorm:"index"`
	PlanID           string
	Currency         string
	TotalAmount      int
	TelegramChargeID string
	PaidAt           time.Time
}

func (paymentRow) TableName() string { return paymentsTable }

// SQLiteRepository хранит архив в локальном файле SQLite
type SQLiteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite archive requires SQLITE_PATH")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite archive: %w", err)
	}
	if err := db.AutoMigrate(&approvalRow{}, &paymentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite archive: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) SaveApproval(ctx context.Context, record model.ApprovalRecord) error {
	row := approvalRow{
		UserID:    record.UserID,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save approval for user %d: %w", record.UserID, err)
	}
	return nil
}

func (r *SQLiteRepository) SavePayment(ctx context.Context, payment model.Payment) error {
	row := paymentRow{
		ID:               payment.ID,
		InvoiceID:        payment.InvoiceID,
		UserID:           payment.UserID,
		PlanID:           payment.PlanID,
		Currency:         payment.Currency,
		TotalAmount:      payment.TotalAmount,
		TelegramChargeID: payment.TelegramChargeID,
		PaidAt:           payment.PaidAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save payment %s: %w", payment.ID, err)
	}
	return nil
}

// Approvals возвращает архивные записи, используется для проверки архива
func (r *SQLiteRepository) Approvals(ctx context.Context) ([]model.ApprovalRecord, error) {
	var rows []approvalRow
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ApprovalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ApprovalRecord{
			UserID:    row.UserID,
			Status:    model.Status(row.Status),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
