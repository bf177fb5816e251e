package ledger

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

var errBoom = errors.New("connection reset")

type fakeLive struct {
	mu      sync.Mutex
	entries map[string]models.LiveEntry
	order   []string
	fail    error
}

// staleLive serves Get from a snapshot taken before a concurrent checkout.
type staleLive struct {
	*fakeLive
	snapshot models.LiveEntry
}

func (s *staleLive) Get(ctx context.Context, id string) (models.LiveEntry, error) {
	return s.snapshot, nil
}

func newFakeLive() *fakeLive {
	return &fakeLive{entries: make(map[string]models.LiveEntry)}
}

func (f *fakeLive) List(ctx context.Context) ([]models.LiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]models.LiveEntry, 0, len(f.order))
	for _, id := range f.order {
		if e, ok := f.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLive) Get(ctx context.Context, id string) (models.LiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return models.LiveEntry{}, f.fail
	}
	e, ok := f.entries[id]
	if !ok {
		return models.LiveEntry{}, models.ErrNotFound
	}
	return e, nil
}

func (f *fakeLive) Insert(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return models.LiveEntry{}, f.fail
	}
	entry.ID = primitive.NewObjectID()
	f.entries[entry.ID.Hex()] = entry
	f.order = append(f.order, entry.ID.Hex())
	return entry, nil
}

func (f *fakeLive) Replace(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.entries[entry.ID.Hex()]
	if !ok {
		return models.LiveEntry{}, models.ErrNotFound
	}
	if current.CheckedOut {
		return models.LiveEntry{}, models.ErrAlreadyCheckedOut
	}
	f.entries[entry.ID.Hex()] = entry
	return entry, nil
}

func (f *fakeLive) MarkCheckedOut(ctx context.Context, id string) (models.LiveEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return models.LiveEntry{}, f.fail
	}
	e, ok := f.entries[id]
	if !ok {
		return models.LiveEntry{}, models.ErrNotFound
	}
	if e.CheckedOut {
		return models.LiveEntry{}, models.ErrAlreadyCheckedOut
	}
	e.CheckedOut = true
	f.entries[id] = e
	return e, nil
}

func (f *fakeLive) UnmarkCheckedOut(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if e, ok := f.entries[id]; ok {
		e.CheckedOut = false
		f.entries[id] = e
	}
	return nil
}

func (f *fakeLive) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeLive) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	n := int64(len(f.entries))
	f.entries = make(map[string]models.LiveEntry)
	f.order = nil
	return n, nil
}

type fakeSales struct {
	mu           sync.Mutex
	records      []models.SoldRecord
	summary      *models.SummaryTotal
	failInsert   error
	failIncrease error
}

func (f *fakeSales) List(ctx context.Context) ([]models.SoldRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SoldRecord(nil), f.records...), nil
}

func (f *fakeSales) Get(ctx context.Context, id string) (models.SoldRecord, error) {
	return models.SoldRecord{}, errors.New("not used")
}

func (f *fakeSales) Insert(ctx context.Context, record models.SoldRecord) (models.SoldRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return models.SoldRecord{}, f.failInsert
	}
	record.ID = primitive.NewObjectID()
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeSales) Replace(ctx context.Context, record models.SoldRecord) (models.SoldRecord, error) {
	return models.SoldRecord{}, errors.New("not used")
}

func (f *fakeSales) Delete(ctx context.Context, id string) (models.SoldRecord, error) {
	return models.SoldRecord{}, errors.New("not used")
}

func (f *fakeSales) Summary(ctx context.Context) (models.SummaryTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summary == nil {
		return models.SummaryTotal{}, models.ErrNotFound
	}
	return *f.summary, nil
}

func (f *fakeSales) IncrementSummary(ctx context.Context, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncrease != nil {
		return f.failIncrease
	}
	if f.summary == nil {
		f.summary = &models.SummaryTotal{}
	}
	f.summary.TotalSales += delta
	return nil
}

func (f *fakeSales) SetSummary(ctx context.Context, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = &models.SummaryTotal{TotalSales: total}
	return nil
}

func (f *fakeSales) SumPrices(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, r := range f.records {
		total += r.Price
	}
	return total, nil
}
