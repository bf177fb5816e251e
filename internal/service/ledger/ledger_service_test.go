package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/metrics"
)

func newTestService() (*Service, *fakeLive, *fakeSales) {
	live := newFakeLive()
	sales := &fakeSales{}
	return NewService(live, sales, metrics.New(), nil), live, sales
}

func TestAddEntry(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.AddEntry(ctx, models.EntryInput{Code: "A-12", MinerName: "Rosa", Price: "150.50", Seller: "Joy"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	entries, err := svc.LoadLive(ctx)
	if err != nil {
		t.Fatalf("LoadLive: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	got := entries[0]
	if got.ID != created.ID {
		t.Errorf("ID = %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
	if got.Code != "A-12" || got.MinerName != "Rosa" || got.Seller != "Joy" {
		t.Errorf("entry = %+v, want fields from input", got)
	}
	if got.Price != 150.5 {
		t.Errorf("Price = %v, want 150.5", got.Price)
	}
	if got.CheckedOut {
		t.Error("new entry should not be checked out")
	}
}

func TestAddEntryDefaultsSeller(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.AddEntry(context.Background(), models.EntryInput{Code: "B1", MinerName: "Lito", Price: "20"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if created.Seller != models.UnknownSeller {
		t.Errorf("Seller = %q, want %q", created.Seller, models.UnknownSeller)
	}
}

func TestAddEntryValidation(t *testing.T) {
	tests := []struct {
		name string
		in   models.EntryInput
	}{
		{"missing code", models.EntryInput{MinerName: "Rosa", Price: "10"}},
		{"missing miner", models.EntryInput{Code: "A1", Price: "10"}},
		{"missing price", models.EntryInput{Code: "A1", MinerName: "Rosa"}},
		{"blank code", models.EntryInput{Code: "   ", MinerName: "Rosa", Price: "10"}},
		{"bad price", models.EntryInput{Code: "A1", MinerName: "Rosa", Price: "ten"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, live, _ := newTestService()
			_, err := svc.AddEntry(context.Background(), tt.in)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("AddEntry error = %v, want ErrValidation", err)
			}
			if len(live.entries) != 0 {
				t.Errorf("store has %d entries, want none written", len(live.entries))
			}
		})
	}
}

func TestStoreFailureIsSurfaced(t *testing.T) {
	svc, live, _ := newTestService()
	live.fail = errBoom

	if _, err := svc.LoadLive(context.Background()); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("LoadLive error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := svc.AddEntry(context.Background(), models.EntryInput{Code: "A", MinerName: "B", Price: "1"}); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("AddEntry error = %v, want ErrStoreUnavailable", err)
	}
}

func TestDeleteEntryIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "5"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.DeleteEntry(ctx, created.ID.Hex()); err != nil {
			t.Fatalf("DeleteEntry #%d: %v", i+1, err)
		}
	}

	entries, _ := svc.LoadLive(ctx)
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestCheckout(t *testing.T) {
	svc, live, sales := newTestService()
	ctx := context.Background()

	entry, err := svc.AddEntry(ctx, models.EntryInput{Code: "C-7", MinerName: "Nena", Price: "99.95", Seller: "Ana"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	start := time.Now()
	record, err := svc.Checkout(ctx, entry.ID.Hex())
	end := time.Now()
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if len(sales.records) != 1 {
		t.Fatalf("sold records = %d, want 1", len(sales.records))
	}
	sold := sales.records[0]
	if sold.ID != record.ID {
		t.Errorf("returned record id %s, stored %s", record.ID.Hex(), sold.ID.Hex())
	}
	if sold.Code != entry.Code || sold.MinerName != entry.MinerName || sold.Price != entry.Price || sold.Seller != entry.Seller {
		t.Errorf("sold = %+v, want mirror of %+v", sold, entry)
	}
	if sold.Date.Before(start) || sold.Date.After(end) {
		t.Errorf("Date = %s, want within [%s, %s]", sold.Date, start, end)
	}
	if sold.ID == entry.ID {
		t.Error("sold record should be a new document")
	}

	if !live.entries[entry.ID.Hex()].CheckedOut {
		t.Error("live entry should be checked out")
	}
	if _, ok := live.entries[entry.ID.Hex()]; !ok {
		t.Error("live entry should not be deleted by checkout")
	}

	if sales.summary == nil || sales.summary.TotalSales != 99.95 {
		t.Errorf("summary = %+v, want totalSales 99.95", sales.summary)
	}
}

func TestCheckoutTwiceIsRejected(t *testing.T) {
	svc, _, sales := newTestService()
	ctx := context.Background()

	entry, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "10"})
	if _, err := svc.Checkout(ctx, entry.ID.Hex()); err != nil {
		t.Fatalf("first Checkout: %v", err)
	}
	if _, err := svc.Checkout(ctx, entry.ID.Hex()); !errors.Is(err, models.ErrAlreadyCheckedOut) {
		t.Errorf("second Checkout error = %v, want ErrAlreadyCheckedOut", err)
	}
	if len(sales.records) != 1 {
		t.Errorf("sold records = %d, want 1", len(sales.records))
	}
}

func TestCheckoutUnknownEntry(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Checkout(context.Background(), "64b7f0c2a1b2c3d4e5f60718"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Checkout error = %v, want ErrNotFound", err)
	}
}

func TestCheckoutSurvivesSummaryFailure(t *testing.T) {
	svc, _, sales := newTestService()
	sales.failIncrease = errBoom
	ctx := context.Background()

	entry, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "10"})
	if _, err := svc.Checkout(ctx, entry.ID.Hex()); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(sales.records) != 1 {
		t.Errorf("sold records = %d, want 1", len(sales.records))
	}
}

func TestCheckoutSoldInsertFailure(t *testing.T) {
	svc, live, sales := newTestService()
	sales.failInsert = errBoom
	ctx := context.Background()

	entry, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "10"})
	if _, err := svc.Checkout(ctx, entry.ID.Hex()); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("Checkout error = %v, want ErrStoreUnavailable", err)
	}
	if sales.summary != nil {
		t.Errorf("summary = %+v, want untouched", sales.summary)
	}
	if live.entries[entry.ID.Hex()].CheckedOut {
		t.Fatal("entry left checked out without a sold record")
	}

	sales.failInsert = nil
	record, err := svc.Checkout(ctx, entry.ID.Hex())
	if err != nil {
		t.Fatalf("retried Checkout: %v", err)
	}
	if len(sales.records) != 1 || record.Code != "A" {
		t.Errorf("sold records = %+v, want exactly one mirroring the entry", sales.records)
	}
	if !live.entries[entry.ID.Hex()].CheckedOut {
		t.Error("entry not checked out after retry")
	}
}

func TestConcurrentCheckoutsKeepSummary(t *testing.T) {
	svc, _, sales := newTestService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 20; i++ {
		e, err := svc.AddEntry(ctx, models.EntryInput{Code: "X", MinerName: "Y", Price: "5"})
		if err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
		ids = append(ids, e.ID.Hex())
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Checkout(ctx, id); err != nil {
				t.Errorf("Checkout(%s): %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	if sales.summary.TotalSales != 100 {
		t.Errorf("summary = %v, want 100", sales.summary.TotalSales)
	}
}

func TestBeginEditAndUpdateEntry(t *testing.T) {
	svc, live, _ := newTestService()
	ctx := context.Background()

	entry, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "Rosa", Price: "10", Seller: "Joy"})

	draft, err := svc.BeginEdit(ctx, entry.ID.Hex())
	if err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if draft.Code != "A" || draft.Price != 10 {
		t.Errorf("draft = %+v, want stored fields", draft)
	}

	updated, err := svc.UpdateEntry(ctx, entry.ID.Hex(), models.EntryInput{Code: "A2", MinerName: "Rosa", Price: "12", Seller: "Joy"})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if updated.ID != entry.ID || updated.Code != "A2" || updated.Price != 12 {
		t.Errorf("updated = %+v", updated)
	}
	if len(live.entries) != 1 {
		t.Errorf("entries = %d, want 1 (edited in place)", len(live.entries))
	}
}

func TestUpdateCheckedOutEntryIsRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	entry, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "10"})
	if _, err := svc.Checkout(ctx, entry.ID.Hex()); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	_, err := svc.UpdateEntry(ctx, entry.ID.Hex(), models.EntryInput{Code: "A", MinerName: "B", Price: "1"})
	if !errors.Is(err, models.ErrAlreadyCheckedOut) {
		t.Errorf("UpdateEntry error = %v, want ErrAlreadyCheckedOut", err)
	}
}

func TestUpdateEntryLosesRaceWithCheckout(t *testing.T) {
	live := newFakeLive()
	sales := &fakeSales{}
	ctx := context.Background()

	entry, _ := live.Insert(ctx, models.LiveEntry{Code: "A", MinerName: "B", Price: 10})
	if _, err := live.MarkCheckedOut(ctx, entry.ID.Hex()); err != nil {
		t.Fatalf("MarkCheckedOut: %v", err)
	}
	svc := NewService(&staleLive{fakeLive: live, snapshot: entry}, sales, nil, nil)

	_, err := svc.UpdateEntry(ctx, entry.ID.Hex(), models.EntryInput{Code: "A", MinerName: "B", Price: "1"})
	if !errors.Is(err, models.ErrAlreadyCheckedOut) {
		t.Fatalf("UpdateEntry error = %v, want ErrAlreadyCheckedOut", err)
	}
	if got := live.entries[entry.ID.Hex()].Price; got != 10 {
		t.Errorf("price = %v, want 10 (sold entry untouched)", got)
	}
}

func TestAddEntryRejectsOutOfRangePrice(t *testing.T) {
	svc, live, _ := newTestService()

	_, err := svc.AddEntry(context.Background(), models.EntryInput{Code: "A", MinerName: "B", Price: "1e400"})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("AddEntry error = %v, want ErrValidation", err)
	}
	if len(live.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(live.entries))
	}
}

func TestClearAllLeavesSoldRecords(t *testing.T) {
	svc, _, sales := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "10"})
		if i == 0 {
			if _, err := svc.Checkout(ctx, e.ID.Hex()); err != nil {
				t.Fatalf("Checkout: %v", err)
			}
		}
	}
	before := append([]models.SoldRecord(nil), sales.records...)
	summaryBefore := *sales.summary

	deleted, err := svc.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	entries, _ := svc.LoadLive(ctx)
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
	if board := NewBoard(entries); !board.CheckedOutTotal.IsZero() || !board.Subtotal.IsZero() {
		t.Errorf("board totals = %s/%s, want zero", board.Subtotal, board.CheckedOutTotal)
	}
	if len(sales.records) != len(before) || sales.records[0] != before[0] {
		t.Error("ClearAll altered sold records")
	}
	if *sales.summary != summaryBefore {
		t.Error("ClearAll altered the summary")
	}
}

func TestCheckedOutTotalFollowsCheckout(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.AddEntry(ctx, models.EntryInput{Code: "A", MinerName: "B", Price: "0.1"})
	entries, _ := svc.LoadLive(ctx)
	if got := CheckedOutTotal(entries); !got.IsZero() {
		t.Errorf("CheckedOutTotal = %s, want 0", got)
	}

	if _, err := svc.AddEntry(ctx, models.EntryInput{Code: "C", MinerName: "D", Price: "0.2"}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	entries, _ = svc.LoadLive(ctx)
	if got := CheckedOutTotal(entries); !got.IsZero() {
		t.Errorf("CheckedOutTotal after non-checked-out add = %s, want 0", got)
	}

	if _, err := svc.Checkout(ctx, a.ID.Hex()); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	entries, _ = svc.LoadLive(ctx)
	if got := CheckedOutTotal(entries); !got.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("CheckedOutTotal = %s, want 0.1", got)
	}
	if got := Subtotal(entries); !got.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("Subtotal = %s, want 0.3", got)
	}
}
