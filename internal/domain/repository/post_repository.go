package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]model.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	// Update and Delete match id AND author_id in a single statement so a
	// concurrent delete or a non-owner can never mutate the row.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id, authorID int64) error
}

type sqlPostRepository struct {
	db *sql.DB
}

func NewSQLPostRepository(db *sql.DB) PostRepository {
	return &sqlPostRepository{db: db}
}

func (r *sqlPostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (title, text, author_id, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Text, post.AuthorID, post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlPostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	query := `SELECT id, title, text, author_id, created_at
	          FROM posts WHERE id = $1`
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Text, &post.AuthorID, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlPostRepository.FindByID: %w", err)
	}
	return post, nil
}

func (r *sqlPostRepository) ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]model.Post, error) {
	query := `SELECT id, title, text, author_id, created_at
	          FROM posts WHERE author_id = $1
	          ORDER BY created_at DESC, id DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlPostRepository.ListByAuthor: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Text, &p.AuthorID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlPostRepository.ListByAuthor scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlPostRepository.ListByAuthor rows: %w", err)
	}
	return posts, nil
}

func (r *sqlPostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlPostRepository.CountByAuthor: %w", err)
	}
	return total, nil
}

func (r *sqlPostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts SET title = $1, text = $2
	          WHERE id = $3 AND author_id = $4`
	res, err := r.db.ExecContext(ctx, query, post.Title, post.Text, post.ID, post.AuthorID)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqlPostRepository) Delete(ctx context.Context, id, authorID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
