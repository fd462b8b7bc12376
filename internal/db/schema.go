package db

import (
	"context"
	"fmt"
)

// schemaDDL is applied in order; later tables reference earlier ones.
var schemaDDL = []struct {
	table string
	ddl   string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	email VARCHAR(100) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	full_name VARCHAR(100) NOT NULL,
	phone VARCHAR(20) NULL,
	is_admin TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_username (username),
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_routes", `
CREATE TABLE IF NOT EXISTS bus_routes (
	route_id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_name VARCHAR(100) NOT NULL,
	origin_city VARCHAR(100) NOT NULL,
	destination_city VARCHAR(100) NOT NULL,
	estimated_duration_hours DECIMAL(4,1) NULL,
	KEY idx_cities (origin_city, destination_city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_schedules", `
CREATE TABLE IF NOT EXISTS bus_schedules (
	schedule_id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	bus_number VARCHAR(20) NOT NULL,
	departure_time TIME NOT NULL,
	arrival_time TIME NOT NULL,
	travel_date DATE NOT NULL,
	total_seats INT NOT NULL,
	available_seats INT NOT NULL,
	fare DECIMAL(10,2) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_route_date (route_id, travel_date),
	CONSTRAINT chk_available_seats CHECK (available_seats >= 0 AND available_seats <= total_seats),
	CONSTRAINT fk_schedule_route FOREIGN KEY (route_id) REFERENCES bus_routes (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	booking_id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	schedule_id BIGINT NOT NULL,
	booking_reference VARCHAR(20) NOT NULL,
	passenger_name VARCHAR(100) NOT NULL,
	passenger_age INT NOT NULL DEFAULT 0,
	passenger_gender VARCHAR(10) NOT NULL DEFAULT 'Other',
	seat_numbers VARCHAR(255) NOT NULL,
	seat_count INT NOT NULL DEFAULT 1,
	total_fare DECIMAL(10,2) NOT NULL,
	booking_status VARCHAR(20) NOT NULL DEFAULT 'Confirmed',
	booking_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_booking_reference (booking_reference),
	KEY idx_user (user_id),
	KEY idx_schedule (schedule_id),
	CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users (user_id),
	CONSTRAINT fk_booking_schedule FOREIGN KEY (schedule_id) REFERENCES bus_schedules (schedule_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// SchemaDB is what EnsureSchema needs: *sql.DB or *sql.Tx.
type SchemaDB interface {
	QueryRower
	Execer
}

// EnsureSchema creates the authority tables when they are missing.
// Existing tables are left untouched.
func EnsureSchema(ctx context.Context, q SchemaDB) error {
	for _, s := range schemaDDL {
		if HasTable(ctx, q, s.table) {
			continue
		}
		if _, err := q.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("ensure table %s: %w", s.table, err)
		}
	}
	return nil
}
