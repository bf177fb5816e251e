package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/service/aggregation"
)

// Totals is the sold record contract the handlers depend on.
type Totals interface {
	ParseDay(value string) (time.Time, error)
	Totals(ctx context.Context, day time.Time) (aggregation.Report, error)
	EditSold(ctx context.Context, id string, in models.SoldInput) (models.SoldRecord, error)
	DeleteSold(ctx context.Context, id string) error
	RebuildSummary(ctx context.Context) (decimal.Decimal, error)
}

// TotalsHandler serves the total sales view.
type TotalsHandler struct {
	totals Totals
	logger *zap.Logger
}

// NewTotalsHandler constructs the totals adapter.
func NewTotalsHandler(t Totals, logger *zap.Logger) *TotalsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TotalsHandler{totals: t, logger: logger}
}

type soldRequest struct {
	Code      string     `json:"code"`
	MinerName string     `json:"minerName"`
	Price     amount     `json:"price"`
	Seller    string     `json:"seller"`
	Date      *time.Time `json:"date"`
}

// Get returns the totals for ?date=YYYY-MM-DD, today by default.
func (h *TotalsHandler) Get(c *gin.Context) {
	day, err := h.totals.ParseDay(c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.totals.Totals(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Edit corrects a sold record.
func (h *TotalsHandler) Edit(c *gin.Context) {
	var req soldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sold payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	record, err := h.totals.EditSold(c.Request.Context(), c.Param("id"), models.SoldInput{
		Code:      req.Code,
		MinerName: req.MinerName,
		Price:     string(req.Price),
		Seller:    req.Seller,
		Date:      req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes a sold record.
func (h *TotalsHandler) Delete(c *gin.Context) {
	if err := h.totals.DeleteSold(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RebuildSummary recomputes the running summary.
func (h *TotalsHandler) RebuildSummary(c *gin.Context) {
	total, err := h.totals.RebuildSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("summary rebuilt on request", zap.String("total_sales", total.StringFixed(2)))
	c.JSON(http.StatusOK, gin.H{"totalSales": total})
}
