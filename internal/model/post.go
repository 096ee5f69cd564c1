package model

import "time"

// Post is an image post. LikeCount and CommentCount are maintained by the
// store as likes and comments come and go.
type Post struct {
	ID           int64     `json:"id"           db:"id"`
	UserID       int64     `json:"userId"       db:"user_id"`
	ImageURL     string    `json:"imageUrl"     db:"image_url"`
	Caption      string    `json:"caption"      db:"caption"`
	LikeCount    int       `json:"likeCount"    db:"like_count"`
	CommentCount int       `json:"commentCount" db:"comment_count"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}

// PostView is a post as the client renders it.
//
// IsLiked and IsSaved are always false: per-viewer engagement state is not
// tracked in responses.
type PostView struct {
	Post
	IsLiked  bool      `json:"isLiked"`
	IsSaved  bool      `json:"isSaved"`
	Comments []Comment `json:"comments"`
}

// Feed is the home feed payload.
type Feed struct {
	Posts []PostView `json:"posts"`
	Users []User     `json:"users"`
}

// PostDetail is the single-post payload. User is nil when the owner is gone.
type PostDetail struct {
	Post PostView `json:"post"`
	User *User    `json:"user"`
}
