package models

import "time"

// ApiKey is a personal access key for the /api routes. The secret itself is
// shown once at creation; only its SHA-256 is kept.
type ApiKey struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Name       string     `db:"name" json:"name"`
	Prefix     string     `db:"key_prefix" json:"prefix"`
	KeyHash    string     `db:"key_hash" json:"-"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
