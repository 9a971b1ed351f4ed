// Package journal keeps an audit log of the tasks forwarded to the task inbox.
// Nothing in the processing pipeline reads it back.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// Entry describes one forwarded message
type Entry struct {
	Account   string
	UID       uint32
	MessageID string
	Subject   string
	Time      time.Time
}

// DB is the journal database
type DB struct {
	path string
	db   *sql.DB
}

// New opens the journal at path, creating it if necessary, and applies all migrations.
// Use ":memory:" for a journal which is discarded on Close.
func New(ctx context.Context, path string) (*DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0700)
		if err != nil {
			return nil, fmt.Errorf("cannot create journal directory: %w", err)
		}
	}

	sqliteDatabase, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: opens a separate database
	sqliteDatabase.SetMaxOpenConns(1)

	db := &DB{
		path: path,
		db:   sqliteDatabase,
	}

	err = db.migrate(ctx)
	if err != nil {
		db.db.Close()
		return nil, fmt.Errorf("cannot migrate journal %s: %w", path, err)
	}

	return db, nil
}

// Close closes the underlying database
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// Record adds an entry to the journal
func (db *DB) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err := db.db.ExecContext(ctx,
		`INSERT INTO forwarded (account, uid, messageid, subject, forwarded_at) VALUES (?, ?, ?, ?, ?)`,
		e.Account, e.UID, e.MessageID, e.Subject, e.Time.Unix())
	if err != nil {
		return fmt.Errorf("cannot record forwarded message %d: %w", e.UID, err)
	}
	return nil
}

// Recent returns at most limit entries, newest first.
// A limit of zero or less returns all entries.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.db.QueryContext(ctx,
		`SELECT account, uid, messageid, subject, forwarded_at FROM forwarded
ORDER BY forwarded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		err = rows.Scan(&e.Account, &e.UID, &e.MessageID, &e.Subject, &ts)
		if err != nil {
			return nil, err
		}
		e.Time = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
