package model

import "time"

type Comment struct {
	ID        int64     `json:"id"        db:"id"`
	PostID    int64     `json:"postId"    db:"post_id"`
	UserID    int64     `json:"userId"    db:"user_id"`
	Text      string    `json:"text"      db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CommentInput is the body of POST /api/posts/{id}/comments.
type CommentInput struct {
	Text string `json:"text" validate:"required,max=2200"`
}
