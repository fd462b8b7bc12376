package repositories

import (
	"context"
	"database/sql"
	"strings"

	intdb "busbooking/internal/db"
	"busbooking/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `user_id, username, email, full_name, COALESCE(phone, ''), is_admin, created_at`

// FindByLogin loads the user whose username or email equals login, along
// with the stored password hash.
func (r UserRepository) FindByLogin(ctx context.Context, login string) (models.User, string, error) {
	login = strings.TrimSpace(login)
	var (
		u    models.User
		hash string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users
		WHERE username = ? OR email = ?
		LIMIT 1
	`, login, strings.ToLower(login)).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.IsAdmin, &u.CreatedAt, &hash,
	)
	if err != nil {
		return models.User{}, "", classify("find user", "user", login, err)
	}
	return u, hash, nil
}

// Exists reports whether username or email is already taken.
func (r UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = ? OR email = ?
	`, strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	if err != nil {
		return false, classify("check user", "user", username, err)
	}
	return n > 0, nil
}

// Insert stores a registration whose password is already hashed. A taken
// username or email comes back as domain.DuplicateError.
func (r UserRepository) Insert(ctx context.Context, u models.PendingUser) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, phone, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.PasswordHash, u.FullName, intdb.NullIfEmpty(u.Phone), u.IsAdmin, u.CreatedAt)
	if err != nil {
		return 0, classify("insert user", "user", u.Username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("insert user", "user", u.Username, err)
	}
	return id, nil
}

// IDByUsername resolves the authority id of username.
func (r UserRepository) IDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `SELECT user_id FROM users WHERE username = ? LIMIT 1`, username).Scan(&id)
	if err != nil {
		return 0, classify("find user", "user", username, err)
	}
	return id, nil
}

func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, classify("count users", "user", "", err)
	}
	return n, nil
}
