package main

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const memoryDB = ":memory:"

func openDB(path string) (*sqlx.DB, error) {
	dsn := path
	if path != memoryDB && !strings.Contains(path, "?") {
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is a separate database.
	if path == memoryDB {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initDB(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL CHECK (length(title) <= 50),
		body TEXT NOT NULL CHECK (length(body) <= 300),
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);`

	_, err := db.Exec(schema)
	return err
}

func seedDB(ctx context.Context, s *Store) error {
	posts, err := s.Posts(ctx)
	if err != nil {
		return err
	}
	if len(posts) > 0 {
		return nil
	}

	seed := []Post{
		{Title: "Hello", Body: "First post on the new blog."},
		{Title: "Notes", Body: "Short entries, nothing fancy."},
		{Title: "Weekend", Body: "Walked along the river and read."},
	}
	for _, p := range seed {
		if _, err := s.CreatePost(ctx, p.Title, p.Body); err != nil {
			return err
		}
	}

	s.obs.logger.Info("seeded posts", "count", len(seed))
	return nil
}
