package service

import (
	"context"
	"time"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"
	"miniblog/internal/domain/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type CreatePostRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type UpdatePostRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type PostPage struct {
	Data       []model.Post `json:"data"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
}

func (s *PostService) Create(ctx context.Context, userID int64, req CreatePostRequest) (*model.Post, error) {
	if req.Title == "" || req.Text == "" {
		return nil, common.Errorf("title and text are required: %w", common.ErrValidation)
	}

	post := &model.Post{
		Title:     req.Title,
		Text:      req.Text,
		AuthorID:  userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListOwned returns the caller's posts newest-first. Page and limit fall back
// to 1/10 when out of range; limit is capped at MaxLimit.
func (s *PostService) ListOwned(ctx context.Context, userID int64, page, limit int) (*PostPage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total, err := s.postRepo.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Data:       posts,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *PostService) GetOwned(ctx context.Context, userID, postID int64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, common.Errorf("not authorized to access this post: %w", common.ErrForbidden)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, userID, postID int64, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.GetOwned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" || req.Text == "" {
		return nil, common.Errorf("title and text are required: %w", common.ErrValidation)
	}

	post.Title = req.Title
	post.Text = req.Text
	// The conditional update re-checks ownership in the store, so a post
	// deleted between the read and the write comes back as ErrNotFound.
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Remove(ctx context.Context, userID, postID int64) error {
	if _, err := s.GetOwned(ctx, userID, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID, userID)
}
