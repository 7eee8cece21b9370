package main

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Column limits, enforced by CHECK constraints in the schema.
const (
	maxTitleLen = 50
	maxBodyLen  = 300
)

var postColumns = []string{"id", "title", "body", "created_at"}

// Posts returns every post in insertion order.
func (s *Store) Posts(ctx context.Context) (posts []Post, err error) {
	ctx, done := s.obs.start(ctx, "posts.list")
	defer func() { done(err) }()

	query, args, err := builder.Select(postColumns...).From("posts").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}

	posts = []Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// PostByID returns ErrNotFound when no post has the given id.
func (s *Store) PostByID(ctx context.Context, id int64) (post Post, err error) {
	ctx, done := s.obs.start(ctx, "posts.get")
	defer func() { done(err) }()

	query, args, err := builder.Select(postColumns...).From("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Post{}, err
	}

	if err := s.db.GetContext(ctx, &post, query, args...); err != nil {
		return Post{}, fmt.Errorf("getting post %d: %w", id, mapError(err))
	}
	return post, nil
}

func (s *Store) CreatePost(ctx context.Context, title, body string) (id int64, err error) {
	ctx, done := s.obs.start(ctx, "posts.create")
	defer func() { done(err) }()

	query, args, err := builder.Insert("posts").
		Columns("title", "body", "created_at").
		Values(title, body, s.now()).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", mapError(err))
	}
	return result.LastInsertId()
}

// UpdatePost overwrites title and body. It returns ErrNotFound when no
// row matched.
func (s *Store) UpdatePost(ctx context.Context, id int64, title, body string) (err error) {
	ctx, done := s.obs.start(ctx, "posts.update")
	defer func() { done(err) }()

	query, args, err := builder.Update("posts").
		Set("title", title).
		Set("body", body).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating post %d: %w", id, mapError(err))
	}
	return requireRow(result, id)
}

// DeletePost returns ErrNotFound when no row matched.
func (s *Store) DeletePost(ctx context.Context, id int64) (err error) {
	ctx, done := s.obs.start(ctx, "posts.delete")
	defer func() { done(err) }()

	query, args, err := builder.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return nil
}
