package aggregation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// Calendar boundaries are computed in the location of the argument. End
// boundaries are the last millisecond of the period, and ranges are inclusive
// on both ends.

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last millisecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Millisecond)
}

// Within reports whether ts lies in [start, end].
func Within(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}

// FilterRange keeps the records dated within [start, end].
func FilterRange(records []models.SoldRecord, start, end time.Time) []models.SoldRecord {
	out := make([]models.SoldRecord, 0)
	for _, r := range records {
		if Within(r.Date, start, end) {
			out = append(out, r)
		}
	}
	return out
}

// RecordsForDay keeps the records dated on day's calendar day.
func RecordsForDay(records []models.SoldRecord, day time.Time) []models.SoldRecord {
	return FilterRange(records, StartOfDay(day), EndOfDay(day))
}

// TotalForDay sums records dated on day's calendar day.
func TotalForDay(records []models.SoldRecord, day time.Time) decimal.Decimal {
	return TotalOverall(RecordsForDay(records, day))
}

// TotalForMonth sums records dated in month's calendar month.
func TotalForMonth(records []models.SoldRecord, month time.Time) decimal.Decimal {
	return TotalOverall(FilterRange(records, StartOfMonth(month), EndOfMonth(month)))
}

// TotalOverall sums every record.
func TotalOverall(records []models.SoldRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromFloat(r.Price))
	}
	return total
}

// TotalsBySeller sums prices per seller. Unattributed sales are left out.
func TotalsBySeller(records []models.SoldRecord) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Seller == "" || r.Seller == models.UnknownSeller {
			continue
		}
		out[r.Seller] = out[r.Seller].Add(decimal.NewFromFloat(r.Price))
	}
	return out
}
