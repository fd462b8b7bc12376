package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInsertDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := UserRepository{DB: db}

	u := models.PendingUser{
		Username:     "maria",
		Email:        "maria@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Maria Santos",
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("maria", "maria@example.com", "$2a$10$hash", "Maria Santos", nil, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))
	id, err := repo.Insert(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'maria'"})
	_, err = repo.Insert(context.Background(), u)
	assert.True(t, domain.IsDuplicate(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := UserRepository{DB: db}

	mock.ExpectQuery("FROM users").
		WithArgs("Maria@Example.com", "maria@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "username", "email", "full_name", "phone", "is_admin", "created_at", "password_hash",
		}).AddRow(12, "maria", "maria@example.com", "Maria Santos", "", true, time.Now(), "$2a$10$hash"))

	u, hash, err := repo.FindByLogin(context.Background(), " Maria@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.Equal(t, "admin", u.Role())
	assert.Equal(t, "$2a$10$hash", hash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSearchArgs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := ScheduleRepository{DB: db}

	mock.ExpectQuery("s.available_seats > 0").
		WithArgs("%Manila%", "%Baguio%", "2026-11-02").
		WillReturnRows(sqlmock.NewRows([]string{
			"schedule_id", "route_id", "route_name", "origin_city", "destination_city",
			"bus_number", "travel_date", "departure_time", "arrival_time",
			"total_seats", "available_seats", "fare",
		}).AddRow(9, 1, "North Line", "Manila", "Baguio", "BUS-12", "2026-11-02", "08:00", "14:00", 40, 12, 12.5))

	got, err := repo.Search(context.Background(), models.ScheduleQuery{
		Origin: "Manila", Destination: "Baguio", TravelDate: "2026-11-02",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].AvailableSeats)
	assert.Equal(t, 12.5, got[0].Fare)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorityLookupAndPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	a := NewAuthority(db)

	mock.ExpectPing()
	require.NoError(t, a.Ping(context.Background()))

	mock.ExpectQuery("FROM users").
		WithArgs("ghost", "ghost").
		WillReturnError(sql.ErrNoRows)
	_, err = a.LookupUser(context.Background(), "ghost")
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, domain.IsUnavailable(NewAuthority(nil).Ping(context.Background())))
}
