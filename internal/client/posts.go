package client

import (
	"context"

	"miniblog/internal/domain/model"
)

// PostList caches the first page of the user's posts and keeps it in sync
// with mutations made through it. Load fetches at most once per container;
// Refresh forces a reload. Not safe for concurrent use.
type PostList struct {
	client  *Client
	items   []model.Post
	total   int
	fetched bool
}

func NewPostList(c *Client) *PostList {
	return &PostList{client: c}
}

func (l *PostList) Items() []model.Post {
	return l.items
}

func (l *PostList) Total() int {
	return l.total
}

// Load fetches the list once; later calls are no-ops until Refresh.
func (l *PostList) Load(ctx context.Context) error {
	if l.fetched {
		return nil
	}
	return l.Refresh(ctx)
}

func (l *PostList) Refresh(ctx context.Context) error {
	page, err := l.client.Posts(ctx, 1, 100)
	if err != nil {
		return err
	}
	l.items = page.Data
	l.total = page.Total
	l.fetched = true
	return nil
}

// Create posts through the API and prepends the result, matching the
// server's newest-first ordering.
func (l *PostList) Create(ctx context.Context, title, text string) (*model.Post, error) {
	post, err := l.client.CreatePost(ctx, title, text)
	if err != nil {
		return nil, err
	}
	l.items = append([]model.Post{*post}, l.items...)
	l.total++
	return post, nil
}

func (l *PostList) Update(ctx context.Context, id int64, title, text string) (*model.Post, error) {
	post, err := l.client.UpdatePost(ctx, id, title, text)
	if err != nil {
		return nil, err
	}
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i] = *post
			break
		}
	}
	return post, nil
}

func (l *PostList) Delete(ctx context.Context, id int64) error {
	if err := l.client.DeletePost(ctx, id); err != nil {
		return err
	}
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.total--
			break
		}
	}
	return nil
}
