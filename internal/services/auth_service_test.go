package services

import (
	"context"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registerRequest(username string) models.RegisterRequest {
	return models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
		FullName: "Maria Santos",
	}
}

func TestAuthOfflineRegisterAndLogin(t *testing.T) {
	store := newTestStore(t)
	svc := AuthService{Store: store, Secret: []byte("test-secret")}
	ctx := context.Background()

	u, err := svc.Register(ctx, domain.ModeOffline, registerRequest("maria"))
	require.NoError(t, err)
	assert.Zero(t, u.ID)
	assert.False(t, u.IsAdmin)

	entries, _, err := store.Users.Enumerate(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// only the hash is stored
	assert.NotEqual(t, "s3cret-pass", entries[0].User.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(entries[0].User.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.Register(ctx, domain.ModeOffline, registerRequest("maria"))
	assert.True(t, domain.IsDuplicate(err))

	token, logged, err := svc.Login(ctx, domain.ModeOffline, models.LoginRequest{Login: "maria@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "maria", logged.Username)

	caller, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "maria", caller.Username)
	assert.Equal(t, domain.ID(0), caller.UserID)
	assert.False(t, caller.IsAdmin())

	_, _, err = svc.Login(ctx, domain.ModeOffline, models.LoginRequest{Login: "maria", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthOnlineRegisterDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := AuthService{Users: repositories.UserRepository{DB: db}, Store: newTestStore(t), Secret: []byte("k")}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs("juan", "juan@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err = svc.Register(context.Background(), domain.ModeOnline, registerRequest("juan"))
	assert.True(t, domain.IsDuplicate(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthOnlineLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "username", "email", "full_name", "phone", "is_admin", "created_at", "password_hash",
		}).AddRow(3, "admin", "admin@example.com", "Admin", "", true, time.Now(), string(hash)))

	svc := AuthService{Users: repositories.UserRepository{DB: db}, Store: newTestStore(t), Secret: []byte("k")}
	token, u, err := svc.Login(context.Background(), domain.ModeOnline, models.LoginRequest{Login: "admin", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	caller, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.ID(3), caller.UserID)
	assert.True(t, caller.IsAdmin())
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc := AuthService{Secret: []byte("k"), TTL: time.Hour, Now: func() time.Time { return issued }}
	token, err := svc.IssueToken(models.User{ID: 1, Username: "ana"})
	require.NoError(t, err)

	later := svc
	later.Now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = later.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other := AuthService{Secret: []byte("other"), Now: svc.Now}
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
