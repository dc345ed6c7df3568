// Package database opens the MySQL pool the repositories run on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/coachlog/coachlog-api/internal/config"
)

// Open connects to MySQL using the loaded configuration and verifies the
// connection before any repository is built on top of it.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(cfg))
	if err != nil {
		return nil, err
	}

	// Modest pool: every request issues at most a handful of short,
	// index-backed statements, and the cascade transactions hold a
	// connection only briefly.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// dsn builds the driver DSN. parseTime maps DATETIME columns onto
// time.Time and loc=UTC keeps timestamps in UTC end to end.
// clientFoundRows makes RowsAffected report matched rows rather than
// changed ones: the ownership-scoped updates use RowsAffected to tell
// "no such row under this owner" apart from "row exists, nothing to
// change", and only matched-row counting keeps the two distinct.
func dsn(cfg config.Config) string {
	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = cfg.DBUser + ":" + cfg.DBPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
