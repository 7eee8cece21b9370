package main

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

func (s *Store) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (token string, err error) {
	ctx, done := s.obs.start(ctx, "sessions.create")
	defer func() { done(err) }()

	token, err = generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	query, args, err := builder.Insert("sessions").
		Columns("token", "user_id", "expires_at").
		Values(token, userID, s.now().Add(ttl)).
		ToSql()
	if err != nil {
		return "", err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	return token, nil
}

// Session returns the unexpired session for token, or ErrNotFound.
func (s *Store) Session(ctx context.Context, token string) (session Session, err error) {
	ctx, done := s.obs.start(ctx, "sessions.get")
	defer func() { done(err) }()

	query, args, err := builder.Select("token", "user_id", "expires_at").
		From("sessions").
		Where(sq.Eq{"token": token}).
		Where(sq.Gt{"expires_at": s.now()}).
		ToSql()
	if err != nil {
		return Session{}, err
	}

	if err := s.db.GetContext(ctx, &session, query, args...); err != nil {
		return Session{}, fmt.Errorf("getting session: %w", mapError(err))
	}
	return session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) (err error) {
	ctx, done := s.obs.start(ctx, "sessions.delete")
	defer func() { done(err) }()

	query, args, err := builder.Delete("sessions").Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired rows and reports how many went.
func (s *Store) CleanupExpiredSessions(ctx context.Context) (n int64, err error) {
	ctx, done := s.obs.start(ctx, "sessions.cleanup")
	defer func() { done(err) }()

	query, args, err := builder.Delete("sessions").Where(sq.LtOrEq{"expires_at": s.now()}).ToSql()
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cleaning up expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// cleanupSessionsEvery purges expired sessions on each tick until ctx ends.
func cleanupSessionsEvery(ctx context.Context, s *Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.CleanupExpiredSessions(ctx); err == nil && n > 0 {
				s.obs.logger.Info("removed expired sessions", "count", n)
			}
		}
	}
}
