package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/ivanoskov/premium_access_bot/internal/session"
	"github.com/ivanoskov/premium_access_bot/internal/store"
)

// ReplayPolicy определяет, что делать с повторным событием оплаты одного счета
type ReplayPolicy string

const (
	// ReplayReissue выдает новую ссылку на каждое событие оплаты
	ReplayReissue ReplayPolicy = "reissue"
	// ReplayIgnore выдает ссылку только на первое событие оплаты счета
	ReplayIgnore ReplayPolicy = "ignore"
)

// Repository определяет интерфейс архива, в который дублируются изменения
type Repository interface {
	SaveApproval(ctx context.Context, record model.ApprovalRecord) error
	SavePayment(ctx context.Context, payment model.Payment) error
}

// Quote - тариф с рассчитанной ценой в Stars
type Quote struct {
	model.Plan
	Stars int
}

// SuccessfulPayment содержит данные события успешной оплаты от платформы
type SuccessfulPayment struct {
	Payload          string
	Currency         string
	TotalAmount      int
	TelegramChargeID string
}

// Settlement - результат обработки успешной оплаты
type Settlement struct {
	Plan      model.Plan
	Invoice   model.Invoice
	Payment   model.Payment
	Duplicate bool
}

// Stats - сводка для отчетов администратора
type Stats struct {
	Pending     int
	Approved    int
	Disapproved int
	Payments    int
}

type Options struct {
	AdminID int64
	Pricing Pricing
	Plans   []model.Plan
	Replay  ReplayPolicy
}

// Subscriptions реализует продажу доступа: тарифы, чеки, решения администратора и оплаты
type Subscriptions struct {
	store   *store.Store
	repo    Repository
	logger  *slog.Logger
	adminID int64
	pricing Pricing
	plans   []model.Plan
	replay  ReplayPolicy
	now     func() time.Time
}

func NewSubscriptions(st *store.Store, repo Repository, logger *slog.Logger, opts Options) *Subscriptions {
	plans := opts.Plans
	if len(plans) == 0 {
		plans = model.DefaultPlans()
	}
	replay := opts.Replay
	if replay == "" {
		replay = ReplayReissue
	}
	return &Subscriptions{
		store:   st,
		repo:    repo,
		logger:  logger,
		adminID: opts.AdminID,
		pricing: opts.Pricing,
		plans:   plans,
		replay:  replay,
		now:     time.Now,
	}
}

func (s *Subscriptions) AdminID() int64 {
	return s.adminID
}

func (s *Subscriptions) IsAdmin(userID int64) bool {
	return userID == s.adminID
}

// Plans возвращает тарифы в порядке меню вместе с ценой в Stars
func (s *Subscriptions) Plans() []Quote {
	quotes := make([]Quote, 0, len(s.plans))
	for _, p := range s.plans {
		quotes = append(quotes, Quote{Plan: p, Stars: s.pricing.Stars(p.PriceUSD)})
	}
	return quotes
}

func (s *Subscriptions) Plan(id string) (Quote, error) {
	for _, p := range s.plans {
		if p.ID == id {
			return Quote{Plan: p, Stars: s.pricing.Stars(p.PriceUSD)}, nil
		}
	}
	return Quote{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
}

// Language возвращает язык пользователя и признак того, что он уже установлен
func (s *Subscriptions) Language(userID int64) (string, bool) {
	return s.store.Language(userID)
}

// Start начинает диалог заново и запоминает язык пользователя
func (s *Subscriptions) Start(userID int64, lang string) {
	s.store.SetLanguage(userID, lang)
	s.store.Transition(userID, session.Start)
}

func (s *Subscriptions) ChooseManual(userID int64) error {
	if _, err := s.store.Transition(userID, session.ChooseManual); err != nil {
		return fmt.Errorf("%w: %w", ErrPlanNotAvailable, err)
	}
	return nil
}

// IssueInvoice регистрирует счет на выбранный тариф
func (s *Subscriptions) IssueInvoice(ctx context.Context, userID int64, planID string) (model.Invoice, Quote, error) {
	quote, err := s.Plan(planID)
	if err != nil {
		return model.Invoice{}, Quote{}, err
	}
	if _, err := s.store.Transition(userID, session.ChoosePlan); err != nil {
		return model.Invoice{}, Quote{}, fmt.Errorf("%w: %w", ErrPlanNotAvailable, err)
	}

	inv := model.Invoice{
		UserID:   userID,
		PlanID:   quote.ID,
		Stars:    quote.Stars,
		IssuedAt: s.now(),
	}
	inv.GenerateID()
	s.store.AddInvoice(inv)

	s.logger.Info("invoice issued", "user_id", userID, "plan", quote.ID, "stars", quote.Stars, "invoice_id", inv.ID)
	return inv, quote, nil
}

// SubmitReceipt создает или обновляет запись pending. Чек принимается в любом состоянии диалога.
func (s *Subscriptions) SubmitReceipt(ctx context.Context, userID int64) model.ApprovalRecord {
	if from := s.store.Session(userID); from != session.AwaitingReceipt {
		s.logger.Info("receipt uploaded without choosing gift card", "user_id", userID, "state", from)
	}
	s.store.Transition(userID, session.UploadReceipt)

	rec := s.store.PutPending(userID, s.now())
	s.archiveApproval(ctx, rec)
	s.logger.Info("receipt submitted", "user_id", userID)
	return rec
}

// Review проверяет права вызывающего и наличие записи, ничего не меняя
func (s *Subscriptions) Review(callerID, targetID int64) (model.ApprovalRecord, error) {
	if !s.IsAdmin(callerID) {
		return model.ApprovalRecord{}, ErrUnauthorized
	}
	rec, ok := s.store.Approval(targetID)
	if !ok {
		return model.ApprovalRecord{}, fmt.Errorf("%w: user %d", ErrApprovalNotFound, targetID)
	}
	return rec, nil
}

// Approve переводит запись в approved. Предыдущий статус не проверяется.
func (s *Subscriptions) Approve(ctx context.Context, callerID, targetID int64) (model.ApprovalRecord, error) {
	return s.decide(ctx, callerID, targetID, model.StatusApproved, session.Approved)
}

// Disapprove переводит запись в disapproved
func (s *Subscriptions) Disapprove(ctx context.Context, callerID, targetID int64) (model.ApprovalRecord, error) {
	return s.decide(ctx, callerID, targetID, model.StatusDisapproved, session.Disapproved)
}

func (s *Subscriptions) decide(ctx context.Context, callerID, targetID int64, status model.Status, event session.Event) (model.ApprovalRecord, error) {
	if _, err := s.Review(callerID, targetID); err != nil {
		return model.ApprovalRecord{}, err
	}
	rec, ok := s.store.SetStatus(targetID, status, s.now())
	if !ok {
		return model.ApprovalRecord{}, fmt.Errorf("%w: user %d", ErrApprovalNotFound, targetID)
	}
	s.store.Transition(targetID, event)
	s.archiveApproval(ctx, rec)

	s.logger.Info("receipt reviewed", "user_id", targetID, "status", status)
	return rec, nil
}

// Tracker возвращает все записи журнала для администратора
func (s *Subscriptions) Tracker(callerID int64) ([]model.ApprovalRecord, error) {
	if !s.IsAdmin(callerID) {
		return nil, ErrUnauthorized
	}
	return s.store.Approvals(), nil
}

// CheckPreCheckout проверяет, что оплачивается счет, выставленный этому пользователю.
// Сумма и валюта не сверяются: платформа сама гарантирует их соответствие счету.
func (s *Subscriptions) CheckPreCheckout(userID int64, payload string) error {
	_, _, err := s.lookupInvoice(userID, payload)
	return err
}

// SettlePayment обрабатывает успешную оплату согласно ReplayPolicy
func (s *Subscriptions) SettlePayment(ctx context.Context, userID int64, sp SuccessfulPayment) (Settlement, error) {
	inv, quote, err := s.lookupInvoice(userID, sp.Payload)
	if err != nil {
		return Settlement{}, err
	}

	if state := s.store.Session(userID); state != session.AwaitingPayment && state != session.Resolved {
		// Пользователь мог вернуться в меню после оплаты, деньги уже списаны
		s.logger.Warn("payment settled outside of payment session", "user_id", userID, "state", state)
		s.store.Transition(userID, session.ChoosePlan)
	}
	s.store.Transition(userID, session.PaymentSucceeded)

	settlement := Settlement{Plan: quote.Plan, Invoice: inv}
	if n := s.store.MarkSettled(inv.ID); n > 1 {
		s.logger.Warn("repeated payment event for invoice", "user_id", userID, "invoice_id", inv.ID, "count", n, "policy", s.replay)
		if s.replay == ReplayIgnore {
			settlement.Duplicate = true
			return settlement, nil
		}
	}

	payment := model.Payment{
		InvoiceID:        inv.ID,
		UserID:           userID,
		PlanID:           quote.ID,
		Currency:         sp.Currency,
		TotalAmount:      sp.TotalAmount,
		TelegramChargeID: sp.TelegramChargeID,
		PaidAt:           s.now(),
	}
	payment.GenerateID()
	settlement.Payment = payment

	if err := s.repo.SavePayment(ctx, payment); err != nil {
		s.logger.Error("failed to archive payment", "payment_id", payment.ID, "error", err)
	}
	s.logger.Info("payment settled", "user_id", userID, "plan", quote.ID, "amount", sp.TotalAmount, "currency", sp.Currency)
	return settlement, nil
}

func (s *Subscriptions) lookupInvoice(userID int64, payload string) (model.Invoice, Quote, error) {
	planID, invoiceID, err := model.ParsePayload(payload)
	if err != nil {
		return model.Invoice{}, Quote{}, fmt.Errorf("%w: %w", ErrUnknownInvoice, err)
	}
	quote, err := s.Plan(planID)
	if err != nil {
		return model.Invoice{}, Quote{}, fmt.Errorf("%w: %w", ErrUnknownInvoice, err)
	}
	inv, ok := s.store.Invoice(invoiceID)
	if !ok || inv.UserID != userID || inv.PlanID != planID {
		return model.Invoice{}, Quote{}, fmt.Errorf("%w: invoice %s for user %d", ErrUnknownInvoice, invoiceID, userID)
	}
	return inv, quote, nil
}

// Stats считает записи журнала по статусам и число оплат
func (s *Subscriptions) Stats() Stats {
	var st Stats
	for _, rec := range s.store.Approvals() {
		switch rec.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusApproved:
			st.Approved++
		case model.StatusDisapproved:
			st.Disapproved++
		}
	}
	st.Payments = s.store.Payments()
	return st
}

func (s *Subscriptions) PendingCount() int {
	return s.Stats().Pending
}

func (s *Subscriptions) archiveApproval(ctx context.Context, rec model.ApprovalRecord) {
	if err := s.repo.SaveApproval(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("failed to archive approval", "user_id", rec.UserID, "error", err)
	}
}
