// Package seed loads the sample users, posts and comments the client expects
// on a fresh store.
//
// Records go in through repository.Loader, so the counters below (postCount,
// likeCount, commentCount) are stored as written instead of being derived
// from the seeded rows. Load order fixes the ids: user "me" is 1, "emma_s"
// is 2, and so on; post 1 belongs to emma_s.
package seed

import (
	"context"
	"fmt"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// CallerUsername is the seeded account the API acts as.
const CallerUsername = "me"

const samplePassword = "password"

// Hasher turns the sample password into what gets stored.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// Result reports what Load did.
type Result struct {
	Skipped  bool
	Users    int
	Posts    int
	Comments int
}

// Load inserts the sample data unless the caller account already exists,
// which is the case when a persisted store is reopened.
func Load(ctx context.Context, store interface {
	repository.Loader
	repository.UserRepository
}, hasher Hasher) (Result, error) {
	_, err := store.GetUserByUsername(ctx, CallerUsername)
	switch {
	case err == nil:
		return Result{Skipped: true}, nil
	case !apperror.IsNotFound(err):
		return Result{}, fmt.Errorf("seed: checking for existing data: %w", err)
	}

	password, err := hasher.Hash(samplePassword)
	if err != nil {
		return Result{}, fmt.Errorf("seed: hashing sample password: %w", err)
	}

	var res Result
	for _, u := range users() {
		u.Password = password
		if err := store.LoadUser(ctx, &u); err != nil {
			return res, fmt.Errorf("seed: loading user %s: %w", u.Username, err)
		}
		res.Users++
	}
	for _, p := range posts() {
		if err := store.LoadPost(ctx, &p); err != nil {
			return res, fmt.Errorf("seed: loading post for user %d: %w", p.UserID, err)
		}
		res.Posts++
	}
	for _, c := range comments() {
		if err := store.LoadComment(ctx, &c); err != nil {
			return res, fmt.Errorf("seed: loading comment on post %d: %w", c.PostID, err)
		}
		res.Comments++
	}
	return res, nil
}

func ptr(s string) *string { return &s }

func users() []model.User {
	const img = "?auto=format&fit=crop&w=150&h=150"
	return []model.User{
		{
			Username:        "me",
			ProfileImageURL: "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde" + img,
			FollowerCount:   583,
			FollowingCount:  291,
			PostCount:       35,
			Bio:             ptr("Just living life, one post at a time ✌️"),
			DisplayName:     ptr("Your Name"),
		},
		{
			Username:        "emma_s",
			ProfileImageURL: "https://images.unsplash.com/photo-1494790108377-be9c29b29330" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   12567,
			FollowingCount:  423,
			PostCount:       142,
			Bio:             ptr("Travel enthusiast | Foodie | Photographer"),
			DisplayName:     ptr("Emma Smith"),
		},
		{
			Username:        "alex_d",
			ProfileImageURL: "https://images.unsplash.com/photo-1599566150163-29194dcaad36" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   8912,
			FollowingCount:  765,
			PostCount:       98,
			Bio:             ptr("Nature lover | Hiker | Adventure seeker"),
			DisplayName:     ptr("Alex Davis"),
		},
		{
			Username:        "michael",
			ProfileImageURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   5432,
			FollowingCount:  321,
			PostCount:       67,
			Bio:             ptr("Fitness junkie | Tech enthusiast"),
			DisplayName:     ptr("Michael Johnson"),
		},
		{
			Username:        "sofia_92",
			ProfileImageURL: "https://images.unsplash.com/photo-1524504388940-b1c1722653e1" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   18765,
			FollowingCount:  532,
			PostCount:       215,
			Bio:             ptr("Coffee addict | Art lover | Dreamer"),
			DisplayName:     ptr("Sofia Garcia"),
		},
		{
			Username:        "david_m",
			ProfileImageURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   7651,
			FollowingCount:  432,
			PostCount:       87,
			Bio:             ptr("Photographer | Traveler | Music lover"),
			DisplayName:     ptr("David Miller"),
		},
		{
			Username:        "jessica",
			ProfileImageURL: "https://images.unsplash.com/photo-1614283233556-f35b0c801ef1" + img,
			HasStory:        true,
			HasUnseenStory:  true,
			FollowerCount:   10234,
			FollowingCount:  567,
			PostCount:       123,
			Bio:             ptr("Fashion | Beauty | Lifestyle"),
			DisplayName:     ptr("Jessica Taylor"),
		},
	}
}

func posts() []model.Post {
	const img = "?auto=format&fit=crop&w=600&h=600"
	return []model.Post{
		{
			UserID:       2, // emma_s
			ImageURL:     "https://images.unsplash.com/photo-1534528741775-53994a69daeb" + img,
			Caption:      "Summer vibes! 🌞 #beachday #summer",
			LikeCount:    1245,
			CommentCount: 42,
		},
		{
			UserID:       3, // alex_d
			ImageURL:     "https://images.unsplash.com/photo-1501854140801-50d01698950b" + img,
			Caption:      "Morning hikes are the best way to start the day. #nature #mountains",
			LikeCount:    2786,
			CommentCount: 94,
		},
		{
			UserID:       5, // sofia_92
			ImageURL:     "https://images.unsplash.com/photo-1552331704-0eee7c4e5cd5" + img,
			Caption:      "Coffee and art, perfect combination ☕️ #coffeetime #artwork",
			LikeCount:    3456,
			CommentCount: 67,
		},
		{
			UserID:       4, // michael
			ImageURL:     "https://images.unsplash.com/photo-1511988617509-a57c8a288659" + img,
			Caption:      "City lights 🌆 #cityscape #nightlife",
			LikeCount:    1876,
			CommentCount: 53,
		},
		{
			UserID:       6, // david_m
			ImageURL:     "https://images.unsplash.com/photo-1515886657613-9f3515b0c78f" + img,
			Caption:      "Perfect weekend getaway 🏕️ #camping #outdoors",
			LikeCount:    2341,
			CommentCount: 78,
		},
		{
			UserID:       7, // jessica
			ImageURL:     "https://images.unsplash.com/photo-1546069901-ba9599a7e63c" + img,
			Caption:      "Homemade breakfast is the best way to start the day 🍳 #foodie #breakfast",
			LikeCount:    4567,
			CommentCount: 102,
		},
	}
}

func comments() []model.Comment {
	return []model.Comment{
		{PostID: 1, UserID: 3, Text: "Looking great! 🔥"},
		{PostID: 1, UserID: 5, Text: "I love this place! Where is it?"},
		{PostID: 2, UserID: 4, Text: "Amazing view!"},
		{PostID: 2, UserID: 7, Text: "I need to go there! Where is this?"},
		{PostID: 3, UserID: 6, Text: "Love the aesthetic!"},
		{PostID: 3, UserID: 2, Text: "That's my favorite cafe too!"},
	}
}
