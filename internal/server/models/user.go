package models

import "time"

// User is an account as stored in the users table. ID is assigned by the
// database and never changes; UserName and Nickname are both unique.
type User struct {
	ID           int64
	UserName     string
	Nickname     string
	PasswordHash string
	Authority    string
	CreatedAt    time.Time
}
