package main

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// CreateUser stores a user whose password is already hashed. Uniqueness of
// the username is left to the schema; a collision yields ErrDuplicateUsername.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (id int64, err error) {
	ctx, done := s.obs.start(ctx, "users.create")
	defer func() { done(err) }()

	query, args, err := builder.Insert("users").
		Columns("username", "password").
		Values(username, passwordHash).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrDuplicate) {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return result.LastInsertId()
}

// UserByUsername returns ErrNotFound when no user has that name.
func (s *Store) UserByUsername(ctx context.Context, username string) (user User, err error) {
	ctx, done := s.obs.start(ctx, "users.get")
	defer func() { done(err) }()

	query, args, err := builder.Select("id", "username", "password").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return User{}, err
	}

	if err := s.db.GetContext(ctx, &user, query, args...); err != nil {
		return User{}, fmt.Errorf("getting user %q: %w", username, mapError(err))
	}
	return user, nil
}
