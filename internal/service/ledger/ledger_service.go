package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/metrics"
	repo "github.com/mamadbah2/salestracker/internal/repository/mongodb"
)

// Service manages live sale entries and their checkout into sold records.
type Service struct {
	live    repo.LiveRepository
	sales   repo.SalesRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a ledger service.
func NewService(live repo.LiveRepository, sales repo.SalesRepository, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		live:    live,
		sales:   sales,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// LoadLive fetches every live entry.
func (s *Service) LoadLive(ctx context.Context) ([]models.LiveEntry, error) {
	entries, err := s.live.List(ctx)
	if err != nil {
		return nil, s.storeErr("list live entries", err)
	}
	return entries, nil
}

// AddEntry validates the form and persists a new, not yet checked out entry.
// Nothing is written when validation fails.
func (s *Service) AddEntry(ctx context.Context, in models.EntryInput) (models.LiveEntry, error) {
	entry, err := buildEntry(in)
	if err != nil {
		return models.LiveEntry{}, err
	}

	created, err := s.live.Insert(ctx, entry)
	if err != nil {
		return models.LiveEntry{}, s.storeErr("insert live entry", err)
	}

	s.logger.Info("live entry added",
		zap.String("id", created.ID.Hex()),
		zap.String("code", created.Code),
		zap.String("seller", created.Seller),
		zap.Float64("price", created.Price))
	return created, nil
}

// BeginEdit returns an entry so its fields can repopulate the entry form.
// The stored entry is left untouched until UpdateEntry.
func (s *Service) BeginEdit(ctx context.Context, id string) (models.LiveEntry, error) {
	entry, err := s.live.Get(ctx, id)
	if err != nil {
		return models.LiveEntry{}, s.storeErr("get live entry", err)
	}
	return entry, nil
}

// UpdateEntry overwrites an entry in place. Checked out entries are final.
func (s *Service) UpdateEntry(ctx context.Context, id string, in models.EntryInput) (models.LiveEntry, error) {
	fields, err := buildEntry(in)
	if err != nil {
		return models.LiveEntry{}, err
	}

	current, err := s.live.Get(ctx, id)
	if err != nil {
		return models.LiveEntry{}, s.storeErr("get live entry", err)
	}
	if current.CheckedOut {
		return models.LiveEntry{}, models.ErrAlreadyCheckedOut
	}

	fields.ID = current.ID
	updated, err := s.live.Replace(ctx, fields)
	if err != nil {
		return models.LiveEntry{}, s.storeErr("update live entry", err)
	}
	return updated, nil
}

// DeleteEntry removes an entry. Deleting a missing entry succeeds.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	if err := s.live.Delete(ctx, id); err != nil {
		return s.storeErr("delete live entry", err)
	}
	return nil
}

// Checkout marks the entry as checked out, mirrors it into a new sold record
// and adds its price to the summary, in that order. When the sold record
// cannot be written the mark is reverted.
func (s *Service) Checkout(ctx context.Context, id string) (models.SoldRecord, error) {
	entry, err := s.live.MarkCheckedOut(ctx, id)
	if err != nil {
		return models.SoldRecord{}, s.storeErr("check out live entry", err)
	}

	record, err := s.sales.Insert(ctx, models.SoldRecord{
		Code:      entry.Code,
		MinerName: entry.MinerName,
		Price:     entry.Price,
		Seller:    sellerOrUnknown(entry.Seller),
		Date:      s.now().UTC(),
	})
	if err != nil {
		// Revert the mark so the checkout can be retried.
		if undoErr := s.live.UnmarkCheckedOut(ctx, id); undoErr != nil {
			s.logger.Error("entry checked out without sold record",
				zap.String("id", id),
				zap.Error(err),
				zap.NamedError("revert_error", undoErr))
		}
		return models.SoldRecord{}, s.storeErr("insert sold record", err)
	}

	// The sold record is the source of truth; a failed increment is repaired
	// by the next summary rebuild.
	if err := s.sales.IncrementSummary(ctx, entry.Price); err != nil {
		s.metrics.ObserveStoreFailure("increment summary")
		s.logger.Warn("summary increment failed, rebuild pending",
			zap.String("sold_id", record.ID.Hex()),
			zap.Error(err))
	}

	s.metrics.ObserveCheckout(record.Seller, record.Price)
	s.logger.Info("live entry checked out",
		zap.String("id", id),
		zap.String("sold_id", record.ID.Hex()),
		zap.Float64("price", record.Price))
	return record, nil
}

// ClearAll deletes every live entry in one batch. Sold records and the
// summary are not touched.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	deleted, err := s.live.DeleteAll(ctx)
	if err != nil {
		return 0, s.storeErr("clear live entries", err)
	}
	s.logger.Info("live entries cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *Service) storeErr(op string, err error) error {
	wrapped := models.StoreError(op, err)
	if errors.Is(wrapped, models.ErrStoreUnavailable) {
		s.metrics.ObserveStoreFailure(op)
		s.logger.Error("store call failed", zap.String("op", op), zap.Error(err))
	}
	return wrapped
}

func buildEntry(in models.EntryInput) (models.LiveEntry, error) {
	code := strings.TrimSpace(in.Code)
	minerName := strings.TrimSpace(in.MinerName)

	switch {
	case code == "":
		return models.LiveEntry{}, fmt.Errorf("%w: code is required", models.ErrValidation)
	case minerName == "":
		return models.LiveEntry{}, fmt.Errorf("%w: miner name is required", models.ErrValidation)
	}

	price, err := models.ParsePrice(in.Price)
	if err != nil {
		return models.LiveEntry{}, err
	}

	return models.LiveEntry{
		Code:       code,
		MinerName:  minerName,
		Price:      price.InexactFloat64(),
		CheckedOut: false,
		Seller:     sellerOrUnknown(in.Seller),
	}, nil
}

func sellerOrUnknown(seller string) string {
	if seller = strings.TrimSpace(seller); seller != "" {
		return seller
	}
	return models.UnknownSeller
}
