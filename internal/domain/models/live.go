package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UnknownSeller labels entries created without a seller name.
const UnknownSeller = "Unknown"

// LiveEntry is one in-progress sale in the liveData collection.
type LiveEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code       string             `bson:"code" json:"code"`
	MinerName  string             `bson:"minerName" json:"minerName"`
	Price      float64            `bson:"price" json:"price"`
	CheckedOut bool               `bson:"checkedOut" json:"checkedOut"`
	Seller     string             `bson:"seller" json:"seller"`
}

// EntryInput is the raw form data for creating or editing a live entry.
type EntryInput struct {
	Code      string `json:"code"`
	MinerName string `json:"minerName"`
	Price     string `json:"price"`
	Seller    string `json:"seller"`
}
