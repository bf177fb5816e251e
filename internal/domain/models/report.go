package models

import "time"

// DailyReport represents the aggregated daily sales stored in MongoDB.
type DailyReport struct {
	Date        time.Time          `bson:"date" json:"date"`
	SalesCount  int                `bson:"sales_count" json:"sales_count"`
	SalesAmount float64            `bson:"sales_amount" json:"sales_amount"`
	MonthToDate float64            `bson:"month_to_date" json:"month_to_date"`
	Overall     float64            `bson:"overall" json:"overall"`
	BySeller    map[string]float64 `bson:"by_seller" json:"by_seller"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
