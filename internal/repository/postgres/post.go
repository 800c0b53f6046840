package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/pkg/database"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// PostRepository implements repository.PostRepository using PostgreSQL.
type PostRepository struct {
	pool database.DBTX
}

// NewPostRepository creates a new PostgreSQL-backed blog post repository.
func NewPostRepository(pool database.DBTX) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts a new post into the database.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, summary, author_id, tags, status, read_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Content,
		p.Summary,
		p.AuthorID,
		p.Tags,
		p.Status,
		p.ReadTime,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `
		SELECT id, title, content, summary, author_id, tags, status, read_time, created_at, updated_at
		FROM posts
		WHERE id = $1`

	var p domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Summary,
		&p.AuthorID,
		&p.Tags,
		&p.Status,
		&p.ReadTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &p, nil
}

// Update modifies an existing post in the database.
func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE posts
		SET title = $1, content = $2, summary = $3, tags = $4, status = $5,
		    read_time = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		p.Title,
		p.Content,
		p.Summary,
		p.Tags,
		p.Status,
		p.ReadTime,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", p.ID)
	}

	return nil
}

// Delete removes a post from the database by its ID.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", id)
	}

	return nil
}

// List returns posts matching the given filter with the total count.
func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter, params pagination.Params) ([]*domain.Post, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.AuthorID != "" {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, filter.AuthorID)
		argIndex++
	}

	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIndex))
		args = append(args, filter.Tag)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, summary, author_id, tags, status, read_time, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM posts
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argIndex, argIndex+1)
	args = append(args, params.PerPage, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var (
		posts []*domain.Post
		total int
	)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.Summary, &p.AuthorID,
			&p.Tags, &p.Status, &p.ReadTime, &p.CreatedAt, &p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate post rows: %w", err)
	}

	if posts == nil {
		posts = []*domain.Post{}
	}

	return posts, total, nil
}
