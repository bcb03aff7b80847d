package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is an account. Email is stored trimmed and lower-cased.
type User struct {
	ID           string    `bson:"_id" db:"id"`
	Name         string    `bson:"name" db:"name"`
	Email        string    `bson:"email" db:"email"`
	PasswordHash string    `bson:"passwordHash" db:"password_hash"`
	Salt         string    `bson:"salt" db:"salt"`
	CreatedAt    time.Time `bson:"createdAt" db:"created_at"`
}

// UserSummary is the public view of a User returned by the API.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUserID returns a fresh id in the same format for every backend.
func NewUserID() string {
	return bson.NewObjectID().Hex()
}
