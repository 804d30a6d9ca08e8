package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusDisapproved Status = "disapproved"
)

// Label возвращает статус в верхнем регистре для отчетов
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}

// ApprovalRecord хранит результат проверки чека подарочной карты
type ApprovalRecord struct {
	UserID    int64     `json:"user_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
