package export

import (
	"testing"
	"time"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestTrackerWorkbook(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	records := []model.ApprovalRecord{
		{UserID: 111, Status: model.StatusPending, CreatedAt: now, UpdatedAt: now},
		{UserID: 222, Status: model.StatusApproved, CreatedAt: now, UpdatedAt: now.Add(time.Hour)},
	}

	buf, err := TrackerWorkbook(records)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "111" || rows[2][2] != "APPROVED" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[2][4] != "2025-06-02 09:00:00" {
		t.Fatalf("unexpected updated time %q", rows[2][4])
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)); got != "gift_card_tracker_20250109.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
}
