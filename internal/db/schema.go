package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type tableDDL struct {
	name string
	ddl  string
}

type columnDDL struct {
	table  string
	column string
	ddl    string
}

var serviceTables = map[string][]tableDDL{
	"user": {{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`}},

	"trip": {
		{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	owner_id BIGINT NOT NULL,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	start_date DATETIME NULL,
	end_date DATETIME NULL,
	source_trip_id BIGINT NULL,
	share_expires_at DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	KEY idx_trips_owner (owner_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
		{"trip_steps", `
CREATE TABLE IF NOT EXISTS trip_steps (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	position INT NOT NULL,
	kind VARCHAR(20) NOT NULL,
	ref_id BIGINT NOT NULL DEFAULT 0,
	title VARCHAR(255) NOT NULL,
	starts_at DATETIME NULL,
	ends_at DATETIME NULL,
	notes TEXT NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	verified_at DATETIME NULL,
	KEY idx_steps_trip (trip_id, position)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
		{"trip_share_codes", `
CREATE TABLE IF NOT EXISTS trip_share_codes (
	code VARCHAR(64) PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	expires_at DATETIME NOT NULL,
	KEY idx_share_trip (trip_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	},

	"travel": {{"travels", `
CREATE TABLE IF NOT EXISTS travels (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	from_city VARCHAR(255) NOT NULL,
	from_airport VARCHAR(16) NOT NULL,
	to_city VARCHAR(255) NOT NULL,
	to_airport VARCHAR(16) NOT NULL,
	departure DATETIME NOT NULL,
	arrival DATETIME NOT NULL,
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	avis DOUBLE NOT NULL DEFAULT 0,
	nb_adults INT NOT NULL DEFAULT 1,
	nb_children INT NOT NULL DEFAULT 0,
	cabin VARCHAR(50) NOT NULL,
	travel_id VARCHAR(255) NOT NULL,
	travel_url VARCHAR(1024) NOT NULL,
	service VARCHAR(100) NOT NULL,
	created_by BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_travel_service (service, travel_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`}},

	"sleep": {{"sleeps", `
CREATE TABLE IF NOT EXISTS sleeps (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	type VARCHAR(100) NOT NULL,
	photo_url VARCHAR(1024) NOT NULL,
	city VARCHAR(255) NOT NULL,
	zip VARCHAR(20) NOT NULL,
	country VARCHAR(100) NOT NULL,
	nb_adults INT NOT NULL,
	nb_children INT NOT NULL,
	avis DOUBLE NOT NULL DEFAULT 0,
	description TEXT NOT NULL,
	service VARCHAR(255) NOT NULL,
	checkin DATETIME NOT NULL,
	checkout DATETIME NOT NULL,
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	KEY idx_sleeps_city (city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`}},

	"eat":   {{"eats", venueDDL("eats")}},
	"drink": {{"drinks", venueDDL("drinks")}},

	"enjoy": {{"enjoys", `
CREATE TABLE IF NOT EXISTS enjoys (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	address VARCHAR(512) NOT NULL,
	city VARCHAR(255) NOT NULL,
	url VARCHAR(1024) NOT NULL,
	photo_url VARCHAR(1024) NOT NULL,
	date DATETIME NOT NULL,
	duration VARCHAR(50) NOT NULL,
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	service VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	KEY idx_enjoys_city (city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`}},
}

// Columns checked on every migrate run and added when a table lacks them.
var serviceColumns = map[string][]columnDDL{
	"trip": {
		{"trip_steps", "verified_at", "ALTER TABLE trip_steps ADD COLUMN verified_at DATETIME NULL"},
	},
	"travel": {
		{"travels", "created_by", "ALTER TABLE travels ADD COLUMN created_by BIGINT NOT NULL DEFAULT 0"},
	},
}

func venueDDL(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	photo_url VARCHAR(1024) NOT NULL,
	address VARCHAR(512) NOT NULL,
	city VARCHAR(255) NOT NULL,
	avis DOUBLE NOT NULL DEFAULT 0,
	nb_adults INT NOT NULL,
	nb_children INT NOT NULL,
	description TEXT NOT NULL,
	date DATETIME NOT NULL,
	KEY idx_%s_city (city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, table, table)
}

// Tables lists the tables owned by service.
func Tables(service string) []string {
	out := []string{}
	for _, t := range serviceTables[service] {
		out = append(out, t.name)
	}
	return out
}

// Migrate creates the tables of one service and adds late columns. Safe to re-run.
func Migrate(ctx context.Context, q Querier, service string) error {
	tables, ok := serviceTables[service]
	if !ok {
		return fmt.Errorf("unknown service %q", service)
	}
	for _, t := range tables {
		if HasTable(ctx, q, t.name) {
			continue
		}
		if _, err := q.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
		zap.L().Info("table created", zap.String("table", t.name))
	}
	for _, c := range serviceColumns[service] {
		if HasColumn(ctx, q, c.table, c.column) {
			continue
		}
		if _, err := q.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add %s.%s: %w", c.table, c.column, err)
		}
		zap.L().Info("column added", zap.String("table", c.table), zap.String("column", c.column))
	}
	return nil
}
