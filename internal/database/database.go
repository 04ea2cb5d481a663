// Package database owns the sqlite store for play and coin history.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"rockola/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const defaultTimeout = 5 * time.Second

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// InsertPlay stores one play record.
func (d *DB) InsertPlay(ctx context.Context, rec models.PlayRecord) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO plays (track_id, kind, title, artist, started_at) VALUES (?, ?, ?, ?, ?)`,
		rec.TrackID, string(rec.Kind), rec.Title, rec.Artist, rec.StartedAt.UTC())
	return err
}

// InsertCoin stores one coin insertion.
func (d *DB) InsertCoin(ctx context.Context, rec models.CoinRecord) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO coins (credits, inserted_at) VALUES (?, ?)`,
		rec.Credits, rec.InsertedAt.UTC())
	return err
}

// RecentPlays returns the newest plays, most recent first.
func (d *DB) RecentPlays(ctx context.Context, limit int) ([]models.PlayRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, track_id, kind, title, artist, started_at FROM plays ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.PlayRecord{}
	for rows.Next() {
		var rec models.PlayRecord
		var kind string
		if err := rows.Scan(&rec.ID, &rec.TrackID, &kind, &rec.Title, &rec.Artist, &rec.StartedAt); err != nil {
			return nil, err
		}
		rec.Kind = models.TrackKind(kind)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CoinSummary totals the coin drawer since the given time.
func (d *DB) CoinSummary(ctx context.Context, since time.Time) (coins, credits int, err error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(credits), 0) FROM coins WHERE inserted_at >= ?`,
		since.UTC())
	err = row.Scan(&coins, &credits)
	return coins, credits, err
}
