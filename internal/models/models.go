// Package models defines core data structures for go-chirper
package models

import (
	"fmt"
	"time"
)

// User represents a web user account
type User struct {
	ID               int64      `json:"id" db:"id"`
	Username         string     `json:"username" db:"username"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"password_hash" db:"password_hash"`
	DisplayName      string     `json:"display_name" db:"display_name"`
	SessionID        string     `json:"session_id" db:"session_id"`                 // Current active session (64 chars)
	LastLoginIP      string     `json:"last_login_ip" db:"last_login_ip"`           // IP of last login (for logging only)
	SessionExpiresAt *time.Time `json:"session_expires_at" db:"session_expires_at"` // Session expiration (sliding)
	LoginAttempts    int        `json:"login_attempts" db:"login_attempts"`         // Failed login attempts counter
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Profile extends a User with social-graph and display data.
// Every user has exactly one profile, created alongside the user row.
type Profile struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"` // joined from users for display
	DisplayName string    `json:"display_name" db:"display_name"`
	PictureURL  string    `json:"picture_url" db:"picture_url"`
	Bio         string    `json:"bio" db:"bio"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Tweet represents a short text post owned by exactly one user
type Tweet struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"` // joined from users for display
	Content   string    `json:"content" db:"content"`
	LikeCount int       `json:"like_count" db:"like_count"`
	Liked     bool      `json:"-" db:"-"` // whether the viewing user liked it
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PrintCreatedAt returns a human-readable time difference from now
func (t *Tweet) PrintCreatedAt() string {
	if t.CreatedAt.IsZero() {
		return "never"
	}

	diff := time.Since(t.CreatedAt)
	totalDays := int(diff.Hours() / 24)

	if diff < time.Minute {
		return fmt.Sprintf("%d seconds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	} else if diff < 48*time.Hour {
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	} else if totalDays < 365 {
		return fmt.Sprintf("%d days ago", totalDays)
	}
	years := totalDays / 365
	if years == 1 {
		return "1 Year ago"
	}
	return fmt.Sprintf("%d Years ago", years)
}
