package repository

import (
	"context"
	"fmt"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/supabase-community/supabase-go"
)

const (
	approvalsTable = "gift_card_approvals"
	paymentsTable  = "star_payments"
)

type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase archive requires SUPABASE_URL and SUPABASE_KEY")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// SaveApproval делает upsert записи по user_id
func (r *SupabaseRepository) SaveApproval(ctx context.Context, record model.ApprovalRecord) error {
	_, _, err := r.client.From(approvalsTable).
		Insert(record, true, "user_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to save approval for user %d: %w", record.UserID, err)
	}
	return nil
}

func (r *SupabaseRepository) SavePayment(ctx context.Context, payment model.Payment) error {
	_, _, err := r.client.From(paymentsTable).
		Insert(payment, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to save payment %s: %w", payment.ID, err)
	}
	return nil
}

func (r *SupabaseRepository) Close() error {
	return nil
}
