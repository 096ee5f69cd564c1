// Package model defines the data structures used throughout the application.
package model

// User is an account that owns posts and stories.
//
// PostCount is denormalized: stores increment it on every CreatePost for the
// owner. HasStory/HasUnseenStory flip to true when the user publishes a story
// and are never reset (there is no story expiry or "viewed" transition).
//
// Password holds an opaque credential (a bcrypt hash for seeded users). It is
// never serialized.
type User struct {
	ID              int64   `json:"id"              db:"id"`
	Username        string  `json:"username"        db:"username"`
	Password        string  `json:"-"               db:"password"`
	ProfileImageURL string  `json:"profileImageUrl" db:"profile_image_url"`
	HasStory        bool    `json:"hasStory"        db:"has_story"`
	HasUnseenStory  bool    `json:"hasUnseenStory"  db:"has_unseen_story"`
	FollowerCount   int     `json:"followerCount"   db:"follower_count"`
	FollowingCount  int     `json:"followingCount"  db:"following_count"`
	PostCount       int     `json:"postCount"       db:"post_count"`
	Bio             *string `json:"bio"             db:"bio"`
	DisplayName     *string `json:"displayName"     db:"display_name"`
}

// Profile is a user merged with their posts. Embedding User flattens its
// fields into the same JSON object.
type Profile struct {
	User
	Posts []Post `json:"posts"`
}
