package models

import "time"

// User is an account of the journal. LoginID is the handle used to sign in
// and is unique across all users.
type User struct {
	ID        int64     `json:"-"`
	LoginID   string    `json:"id"`
	Password  string    `json:"-"` // Don't return password hash in JSON
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
