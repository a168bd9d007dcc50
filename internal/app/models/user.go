package models

import "time"

// User is an identity record. Users are created at registration and never
// updated or deleted by any exposed operation.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt"`
}
