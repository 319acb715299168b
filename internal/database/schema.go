package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables used by the reservation store.  The composite
// index on reservations serves the conflict query (room, status, dates);
// room_locks holds one row per room that approvals lock FOR UPDATE.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		room_id    BIGINT UNSIGNED NOT NULL,
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		status     ENUM('PENDING','APPROVED','CANCELED') NOT NULL DEFAULT 'PENDING',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_reservations_room_status_dates (room_id, status, start_date, end_date),
		KEY idx_reservations_user (user_id),
		CONSTRAINT chk_reservations_range CHECK (end_date > start_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS room_locks (
		room_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (room_id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates missing tables.  Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
