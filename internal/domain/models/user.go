package models

import (
	"strings"
	"time"

	"busbooking/internal/utils"
)

// User is a row in the authority's users table.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Role returns the JWT role claim for the user.
func (u User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

// PendingUser is a registration captured while the authority was
// unreachable. PasswordHash already holds the bcrypt hash; plaintext never
// reaches the offline log.
type PendingUser struct {
	OfflineID    string    `json:"offline_id"`
	Username     string    `json:"username" validate:"required,max=50"`
	Email        string    `json:"email" validate:"required,email,max=100"`
	PasswordHash string    `json:"password_hash" validate:"required"`
	FullName     string    `json:"full_name" validate:"required,max=100"`
	Phone        string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Normalize trims user supplied fields and forces the non-admin flag.
func (u *PendingUser) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = utils.NormalizeSpace(u.FullName)
	u.Phone = strings.TrimSpace(u.Phone)
	u.IsAdmin = false
}

func (u PendingUser) Validate() error {
	return check(u)
}

// Matches reports whether the pending record collides with username or email.
func (u PendingUser) Matches(username, email string) bool {
	return strings.EqualFold(u.Username, strings.TrimSpace(username)) ||
		(email != "" && strings.EqualFold(u.Email, strings.TrimSpace(email)))
}

// RegisterRequest is the registration payload, online or offline.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = utils.NormalizeSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r RegisterRequest) Validate() error {
	return check(r)
}

// LoginRequest accepts either a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return check(r)
}
