package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// Board is the live view: the loaded entries and the totals derived from them.
type Board struct {
	Entries         []models.LiveEntry `json:"entries"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	CheckedOutTotal decimal.Decimal    `json:"checkedOutTotal"`
}

// NewBoard recomputes both totals from entries.
func NewBoard(entries []models.LiveEntry) Board {
	if entries == nil {
		entries = []models.LiveEntry{}
	}
	return Board{
		Entries:         entries,
		Subtotal:        Subtotal(entries),
		CheckedOutTotal: CheckedOutTotal(entries),
	}
}

// CheckedOutTotal sums the price of checked out entries.
func CheckedOutTotal(entries []models.LiveEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.CheckedOut {
			total = total.Add(decimal.NewFromFloat(e.Price))
		}
	}
	return total
}

// Subtotal sums the price of every entry.
func Subtotal(entries []models.LiveEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Price))
	}
	return total
}
