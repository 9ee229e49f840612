// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. ID is zero until the row has been committed.
// PasswordHash holds a bcrypt digest, never the plaintext.
type User struct {
	ID             int64
	UserName       string
	Email          string
	PasswordHash   string
	ImageURL       *string
	HeaderImageURL *string
	Bio            *string
	Location       *string
	CreatedAt      time.Time
}
