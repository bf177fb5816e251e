package models

import "time"

// SessionUser is the authenticated-user handle kept for a session.
type SessionUser struct {
	UID      string    `json:"uid"`
	Email    string    `json:"email"`
	SignedIn time.Time `json:"signedIn"`
}

// UserDoc is the companion document written to the users collection on sign-up.
type UserDoc struct {
	UID   string `bson:"uid" json:"uid"`
	Email string `bson:"email" json:"email"`
}
