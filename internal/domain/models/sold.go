package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SummaryID is the document id of the running total in the totalSales collection.
const SummaryID = "summary"

// SoldRecord is one completed sale in the totalSales collection.
type SoldRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"`
	MinerName string             `bson:"minerName" json:"minerName"`
	Price     float64            `bson:"price" json:"price"`
	Seller    string             `bson:"seller" json:"seller"`
	Date      time.Time          `bson:"date" json:"date"`
}

// SummaryTotal is the singleton running total.
type SummaryTotal struct {
	TotalSales float64 `bson:"totalSales" json:"totalSales"`
}

// SoldInput is the raw form data for correcting a sold record.
type SoldInput struct {
	Code      string     `json:"code"`
	MinerName string     `json:"minerName"`
	Price     string     `json:"price"`
	Seller    string     `json:"seller"`
	Date      *time.Time `json:"date,omitempty"`
}
