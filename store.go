package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrTooLong   = errors.New("value too long")

	ErrDuplicateUsername = fmt.Errorf("username already taken: %w", ErrDuplicate)
)

// Store is the persistence layer. Each method is a single auto-committed
// statement; there are no multi-statement transactions.
type Store struct {
	db  *sqlx.DB
	obs *observer
	now func() time.Time
}

func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:  db,
		obs: newObserver(logger),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// builder is shared by all queries; sqlite binds with ?.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// isClientError reports whether err is caused by the request rather than
// the database.
func isClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrTooLong)
}

// mapError translates driver errors into the store's sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ErrDuplicate
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return ErrTooLong
	}

	// Drivers built without extended result codes report the primary code.
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return ErrDuplicate
		case strings.Contains(msg, "CHECK"):
			return ErrTooLong
		}
	}
	return err
}
