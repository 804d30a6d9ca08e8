package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invoice - счет в Telegram Stars, выставленный пользователю
type Invoice struct {
	ID       string    `json:"id"`
	UserID   int64     `json:"user_id"`
	PlanID   string    `json:"plan_id"`
	Stars    int       `json:"stars"`
	IssuedAt time.Time `json:"issued_at"`
}

// GenerateID генерирует новый UUID для счета, если он еще не установлен
func (i *Invoice) GenerateID() {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
}

// Payload возвращает непрозрачную строку, которая возвращается в событиях оплаты
func (i Invoice) Payload() string {
	return i.PlanID + ":" + i.ID
}

// ParsePayload разбирает payload счета на идентификатор плана и счета
func ParsePayload(payload string) (planID, invoiceID string, err error) {
	planID, invoiceID, ok := strings.Cut(payload, ":")
	if !ok || planID == "" || invoiceID == "" {
		return "", "", fmt.Errorf("malformed invoice payload %q", payload)
	}
	if _, err := uuid.Parse(invoiceID); err != nil {
		return "", "", fmt.Errorf("malformed invoice id in payload %q: %w", payload, err)
	}
	return planID, invoiceID, nil
}

// Payment - подтвержденная платформой оплата счета
type Payment struct {
	ID               string    `json:"id"`
	InvoiceID        string    `json:"invoice_id"`
	UserID           int64     `json:"user_id"`
	PlanID           string    `json:"plan_id"`
	Currency         string    `json:"currency"`
	TotalAmount      int       `json:"total_amount"`
	TelegramChargeID string    `json:"telegram_charge_id"`
	PaidAt           time.Time `json:"paid_at"`
}

// GenerateID генерирует новый UUID для платежа, если он еще не установлен
func (p *Payment) GenerateID() {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
}
