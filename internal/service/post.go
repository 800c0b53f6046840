package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// PostService implements blog business logic. Drafts are visible only to
// their author and admins; published posts are public.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new blog post service.
func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
	}
}

// CreatePostInput holds the parameters for writing a post.
type CreatePostInput struct {
	Title   string
	Content string
	Summary string
	Tags    []string
	Status  string
}

// UpdatePostInput holds partial changes to a post.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Summary *string
	Tags    *[]string
	Status  *string
}

// CreatePost writes a new post owned by authorID. Read time is derived from
// the content, never taken from input.
func (s *PostService) CreatePost(ctx context.Context, authorID string, input CreatePostInput) (*domain.Post, error) {
	status := input.Status
	if status == "" {
		status = domain.PostStatusDraft
	}
	if !domain.IsValidPostStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status: %s", status))
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Content:   input.Content,
		Summary:   input.Summary,
		AuthorID:  authorID,
		Tags:      input.Tags,
		Status:    status,
		ReadTime:  domain.EstimateReadTime(input.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", authorID),
		slog.String("status", post.Status),
	)

	return post, nil
}

// GetPost returns a post. Drafts are hidden from everyone but the author and
// admins, answering 404 rather than 403 so drafts aren't discoverable.
func (s *PostService) GetPost(ctx context.Context, id, viewerID, viewerRole string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if post.Status != domain.PostStatusPublished && !canManagePost(post, viewerID, viewerRole) {
		return nil, apperrors.NotFound("post", id)
	}

	return post, nil
}

// ListPosts returns a filtered page of posts. Non-admin viewers asking for
// drafts only see their own.
func (s *PostService) ListPosts(ctx context.Context, filter repository.PostFilter, params pagination.Params, viewerID, viewerRole string) ([]*domain.Post, int, error) {
	if filter.Status != "" && !domain.IsValidPostStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status: %s", filter.Status))
	}

	// Default the public listing to published posts.
	if filter.Status == "" {
		filter.Status = domain.PostStatusPublished
	}

	if filter.Status == domain.PostStatusDraft && viewerRole != domain.RoleAdmin {
		if viewerID == "" {
			return nil, 0, apperrors.Forbidden("drafts are not public")
		}
		filter.AuthorID = viewerID
	}

	posts, total, err := s.posts.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// UpdatePost applies partial changes. Only the author or an admin may edit;
// editing content recomputes the read time.
func (s *PostService) UpdatePost(ctx context.Context, id, editorID, editorRole string, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !canManagePost(post, editorID, editorRole) {
		return nil, apperrors.Forbidden("only the author may edit this post")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		post.Title = *input.Title
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, apperrors.InvalidInput("content cannot be empty")
		}
		post.Content = *input.Content
		post.ReadTime = domain.EstimateReadTime(post.Content)
	}
	if input.Summary != nil {
		post.Summary = *input.Summary
	}
	if input.Tags != nil {
		post.Tags = *input.Tags
	}
	if input.Status != nil {
		if !domain.IsValidPostStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status: %s", *input.Status))
		}
		post.Status = *input.Status
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return post, nil
}

// DeletePost removes a post. Only the author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, id, editorID, editorRole string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}

	if !canManagePost(post, editorID, editorRole) {
		return apperrors.Forbidden("only the author may delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", id),
	)

	return nil
}

func canManagePost(post *domain.Post, userID, role string) bool {
	return role == domain.RoleAdmin || (userID != "" && post.AuthorID == userID)
}
