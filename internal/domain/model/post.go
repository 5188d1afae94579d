package model

import (
	"time"
)

// Post belongs to exactly one user. AuthorID is set at creation and never
// reassigned; it is the sole basis for access control.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}
