package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/service/ledger"
)

// Ledger is the live entry contract the handlers depend on.
type Ledger interface {
	LoadLive(ctx context.Context) ([]models.LiveEntry, error)
	AddEntry(ctx context.Context, in models.EntryInput) (models.LiveEntry, error)
	BeginEdit(ctx context.Context, id string) (models.LiveEntry, error)
	UpdateEntry(ctx context.Context, id string, in models.EntryInput) (models.LiveEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	Checkout(ctx context.Context, id string) (models.SoldRecord, error)
	ClearAll(ctx context.Context) (int64, error)
}

// LiveHandler serves the live sale board.
type LiveHandler struct {
	ledger Ledger
	logger *zap.Logger
}

// NewLiveHandler constructs the live board adapter.
func NewLiveHandler(l Ledger, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{ledger: l, logger: logger}
}

type entryRequest struct {
	Code      string `json:"code"`
	MinerName string `json:"minerName"`
	Price     amount `json:"price"`
	Seller    string `json:"seller"`
}

// input fills a missing seller from the terminal's seller label.
func (r entryRequest) input(c *gin.Context) models.EntryInput {
	seller := r.Seller
	if seller == "" {
		seller = SellerName(c)
	}
	return models.EntryInput{
		Code:      r.Code,
		MinerName: r.MinerName,
		Price:     string(r.Price),
		Seller:    seller,
	}
}

// List returns the board: every live entry with its totals.
func (h *LiveHandler) List(c *gin.Context) {
	entries, err := h.ledger.LoadLive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger.NewBoard(entries))
}

// Add creates a live entry.
func (h *LiveHandler) Add(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	entry, err := h.ledger.AddEntry(c.Request.Context(), req.input(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Get returns one entry as an edit draft.
func (h *LiveHandler) Get(c *gin.Context) {
	entry, err := h.ledger.BeginEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Update overwrites an entry in place.
func (h *LiveHandler) Update(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	entry, err := h.ledger.UpdateEntry(c.Request.Context(), c.Param("id"), req.input(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete removes an entry.
func (h *LiveHandler) Delete(c *gin.Context) {
	if err := h.ledger.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout moves an entry into the sold records.
func (h *LiveHandler) Checkout(c *gin.Context) {
	record, err := h.ledger.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ClearAll deletes every live entry.
func (h *LiveHandler) ClearAll(c *gin.Context) {
	deleted, err := h.ledger.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
