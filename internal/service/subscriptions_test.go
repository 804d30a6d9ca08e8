package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/ivanoskov/premium_access_bot/internal/session"
	"github.com/ivanoskov/premium_access_bot/internal/store"
)

const testAdminID int64 = 6472207061

type repoStub struct {
	approvals []model.ApprovalRecord
	payments  []model.Payment
	err       error
}

func (r *repoStub) SaveApproval(ctx context.Context, record model.ApprovalRecord) error {
	r.approvals = append(r.approvals, record)
	return r.err
}

func (r *repoStub) SavePayment(ctx context.Context, payment model.Payment) error {
	r.payments = append(r.payments, payment)
	return r.err
}

func newTestSubscriptions(replay ReplayPolicy) (*Subscriptions, *store.Store, *repoStub) {
	st := store.New()
	repo := &repoStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSubscriptions(st, repo, logger, Options{
		AdminID: testAdminID,
		Pricing: Pricing{USDPerStar: DefaultUSDPerStar, MaxStars: DefaultMaxStars},
		Replay:  replay,
	})
	s.now = func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) }
	return s, st, repo
}

func TestPlansQuoteStars(t *testing.T) {
	s, _, _ := newTestSubscriptions("")

	quotes := s.Plans()
	if len(quotes) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(quotes))
	}
	want := map[string]int{"1_month": 3984, "3_months": 9960, "6_months": 9999, "1_year": 9999}
	for _, q := range quotes {
		if q.Stars != want[q.ID] {
			t.Errorf("plan %s: expected %d stars, got %d", q.ID, want[q.ID], q.Stars)
		}
	}
}

func TestReviewWithoutReceiptIsNotFound(t *testing.T) {
	s, st, repo := newTestSubscriptions("")
	ctx := context.Background()

	if _, err := s.Approve(ctx, testAdminID, 555); !errors.Is(err, ErrApprovalNotFound) {
		t.Fatalf("expected ErrApprovalNotFound, got %v", err)
	}
	if _, err := s.Disapprove(ctx, testAdminID, 555); !errors.Is(err, ErrApprovalNotFound) {
		t.Fatalf("expected ErrApprovalNotFound, got %v", err)
	}
	if len(st.Approvals()) != 0 || len(repo.approvals) != 0 {
		t.Fatal("not found path must not create records")
	}
}

func TestNonAdminCannotDecide(t *testing.T) {
	s, st, _ := newTestSubscriptions("")
	ctx := context.Background()
	s.ChooseManual(10)
	s.SubmitReceipt(ctx, 10)

	for _, caller := range []int64{10, 11, 0} {
		if _, err := s.Approve(ctx, caller, 10); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("caller %d: expected ErrUnauthorized, got %v", caller, err)
		}
		if _, err := s.Disapprove(ctx, caller, 10); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("caller %d: expected ErrUnauthorized, got %v", caller, err)
		}
		if _, err := s.Tracker(caller); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("caller %d: expected ErrUnauthorized for tracker, got %v", caller, err)
		}
	}

	rec, _ := st.Approval(10)
	if rec.Status != model.StatusPending {
		t.Fatalf("unauthorized calls must not mutate ledger, got %s", rec.Status)
	}
}

func TestReceiptThenApprove(t *testing.T) {
	s, st, repo := newTestSubscriptions("")
	ctx := context.Background()

	if err := s.ChooseManual(20); err != nil {
		t.Fatal(err)
	}
	rec := s.SubmitReceipt(ctx, 20)
	if rec.Status != model.StatusPending {
		t.Fatalf("expected pending, got %s", rec.Status)
	}
	if got := len(st.Approvals()); got != 1 {
		t.Fatalf("expected exactly one record, got %d", got)
	}

	rec, err := s.Approve(ctx, testAdminID, 20)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.StatusApproved {
		t.Fatalf("expected approved, got %s", rec.Status)
	}
	if st.Session(20) != session.Resolved {
		t.Fatalf("expected resolved session, got %s", st.Session(20))
	}

	// повторное одобрение допустимо
	if _, err := s.Approve(ctx, testAdminID, 20); err != nil {
		t.Fatalf("re-approve should succeed, got %v", err)
	}
	if len(repo.approvals) != 3 {
		t.Fatalf("expected 3 archived approval writes, got %d", len(repo.approvals))
	}
}

func TestReceiptThenDisapprove(t *testing.T) {
	s, st, _ := newTestSubscriptions("")
	ctx := context.Background()
	s.ChooseManual(30)
	s.SubmitReceipt(ctx, 30)

	rec, err := s.Disapprove(ctx, testAdminID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.StatusDisapproved {
		t.Fatalf("expected disapproved, got %s", rec.Status)
	}
	stored, _ := st.Approval(30)
	if stored.Status != model.StatusDisapproved {
		t.Fatalf("ledger not updated: %s", stored.Status)
	}
}

func TestReceiptAcceptedInAnyState(t *testing.T) {
	s, st, _ := newTestSubscriptions("")
	ctx := context.Background()

	// сразу после /start, без выбора подарочной карты
	s.Start(40, "en")
	s.SubmitReceipt(ctx, 40)

	// после выбора тарифа
	s.Start(41, "en")
	if _, _, err := s.IssueInvoice(ctx, 41, "1_month"); err != nil {
		t.Fatal(err)
	}
	s.SubmitReceipt(ctx, 41)

	// после решения администратора
	s.SubmitReceipt(ctx, 42)
	if _, err := s.Disapprove(ctx, testAdminID, 42); err != nil {
		t.Fatal(err)
	}
	s.SubmitReceipt(ctx, 42)

	for _, id := range []int64{40, 41, 42} {
		rec, ok := st.Approval(id)
		if !ok || rec.Status != model.StatusPending {
			t.Fatalf("user %d: expected pending record, got %+v (exists=%v)", id, rec, ok)
		}
		if st.Session(id) != session.AwaitingReceipt {
			t.Fatalf("user %d: expected AwaitingReceipt, got %s", id, st.Session(id))
		}
	}
	if got := len(st.Approvals()); got != 3 {
		t.Fatalf("expected exactly one record per user, got %d", got)
	}
}

func TestArchiveFailureDoesNotBlock(t *testing.T) {
	s, st, repo := newTestSubscriptions("")
	repo.err = errors.New("archive offline")
	s.ChooseManual(50)

	if rec := s.SubmitReceipt(context.Background(), 50); rec.Status != model.StatusPending {
		t.Fatalf("archive failure must not fail receipt, got %s", rec.Status)
	}
	if _, ok := st.Approval(50); !ok {
		t.Fatal("expected record in memory")
	}
}

func TestTrackerOrder(t *testing.T) {
	s, _, _ := newTestSubscriptions("")
	ctx := context.Background()

	records, err := s.Tracker(testAdminID)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty tracker, got %v %v", records, err)
	}

	for _, id := range []int64{3, 1, 2} {
		s.ChooseManual(id)
		s.SubmitReceipt(ctx, id)
	}
	s.Approve(ctx, testAdminID, 1)

	records, err = s.Tracker(testAdminID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0].UserID != 3 || records[1].UserID != 1 {
		t.Fatalf("unexpected tracker records: %+v", records)
	}

	stats := s.Stats()
	if stats.Pending != 2 || stats.Approved != 1 || stats.Disapproved != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestInvoiceAndPayment(t *testing.T) {
	s, st, repo := newTestSubscriptions("")
	ctx := context.Background()

	inv, quote, err := s.IssueInvoice(ctx, 60, "1_year")
	if err != nil {
		t.Fatal(err)
	}
	if quote.Stars != 9999 || inv.Stars != 9999 {
		t.Fatalf("expected capped 9999 stars, got %d", inv.Stars)
	}
	if st.Session(60) != session.AwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", st.Session(60))
	}

	if err := s.CheckPreCheckout(60, inv.Payload()); err != nil {
		t.Fatalf("pre-checkout should pass, got %v", err)
	}

	settlement, err := s.SettlePayment(ctx, 60, SuccessfulPayment{Payload: inv.Payload(), Currency: "XTR", TotalAmount: 9999})
	if err != nil {
		t.Fatal(err)
	}
	if settlement.Plan.Name != "1 Year" || settlement.Duplicate {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected archived payment, got %d", len(repo.payments))
	}
	if st.Session(60) != session.Resolved {
		t.Fatalf("expected resolved, got %s", st.Session(60))
	}
}

func TestUnknownPlan(t *testing.T) {
	s, _, _ := newTestSubscriptions("")
	if _, _, err := s.IssueInvoice(context.Background(), 1, "2_years"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestPaymentWithoutMatchingInvoiceIsRejected(t *testing.T) {
	s, _, repo := newTestSubscriptions("")
	ctx := context.Background()

	inv, _, err := s.IssueInvoice(ctx, 70, "1_month")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]struct {
		user    int64
		payload string
	}{
		"legacy payload": {70, "1_month"},
		"other user":     {71, inv.Payload()},
		"wrong plan":     {70, "1_year:" + inv.ID},
		"unknown id":     {70, "1_month:6f1c2a4e-1f0b-4b8e-9d7f-2a3b4c5d6e7f"},
	}
	for name, c := range cases {
		if err := s.CheckPreCheckout(c.user, c.payload); !errors.Is(err, ErrUnknownInvoice) {
			t.Errorf("%s: expected ErrUnknownInvoice from pre-checkout, got %v", name, err)
		}
		if _, err := s.SettlePayment(ctx, c.user, SuccessfulPayment{Payload: c.payload}); !errors.Is(err, ErrUnknownInvoice) {
			t.Errorf("%s: expected ErrUnknownInvoice from settlement, got %v", name, err)
		}
	}
	if len(repo.payments) != 0 {
		t.Fatal("rejected payments must not be archived")
	}
}

func TestRepeatedPaymentReissuesByDefault(t *testing.T) {
	s, _, repo := newTestSubscriptions(ReplayReissue)
	ctx := context.Background()
	inv, _, _ := s.IssueInvoice(ctx, 80, "3_months")
	sp := SuccessfulPayment{Payload: inv.Payload(), Currency: "XTR", TotalAmount: 9960}

	first, err := s.SettlePayment(ctx, 80, sp)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SettlePayment(ctx, 80, sp)
	if err != nil {
		t.Fatal(err)
	}
	if first.Duplicate || second.Duplicate {
		t.Fatal("reissue policy must treat every event as new")
	}
	if first.Payment.ID == second.Payment.ID {
		t.Fatal("expected distinct payment ids")
	}
	if len(repo.payments) != 2 {
		t.Fatalf("expected 2 archived payments, got %d", len(repo.payments))
	}
}

func TestRepeatedPaymentIgnoredWhenConfigured(t *testing.T) {
	s, _, repo := newTestSubscriptions(ReplayIgnore)
	ctx := context.Background()
	inv, _, _ := s.IssueInvoice(ctx, 90, "6_months")
	sp := SuccessfulPayment{Payload: inv.Payload(), Currency: "XTR", TotalAmount: 9999}

	if _, err := s.SettlePayment(ctx, 90, sp); err != nil {
		t.Fatal(err)
	}
	second, err := s.SettlePayment(ctx, 90, sp)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Duplicate {
		t.Fatal("expected duplicate settlement")
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected 1 archived payment, got %d", len(repo.payments))
	}
}

func TestPaymentAfterReturningToMenuStillSettles(t *testing.T) {
	s, st, _ := newTestSubscriptions("")
	ctx := context.Background()
	inv, _, _ := s.IssueInvoice(ctx, 95, "1_month")
	s.Start(95, "en")

	if _, err := s.SettlePayment(ctx, 95, SuccessfulPayment{Payload: inv.Payload()}); err != nil {
		t.Fatalf("paid invoice must settle, got %v", err)
	}
	if st.Session(95) != session.Resolved {
		t.Fatalf("expected resolved, got %s", st.Session(95))
	}
}
