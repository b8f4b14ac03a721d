package models

import "time"

// PostLike records that a user likes a post. At most one row exists per
// (post, user) pair.
type PostLike struct {
	ID        uint      `json:"pk" gorm:"primaryKey"`
	PostID    uint      `json:"post" gorm:"not null;uniqueIndex:idx_post_like_pair"`
	UserID    uint      `json:"user" gorm:"not null;uniqueIndex:idx_post_like_pair;index"`
	CreatedAt time.Time `json:"created_at"`
}

// PostLikeResponse is the API shape of a like
type PostLikeResponse struct {
	ID        uint      `json:"pk"`
	Post      uint      `json:"post"`
	User      uint      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts a PostLike to its API shape
func (l PostLike) ToResponse() PostLikeResponse {
	return PostLikeResponse{ID: l.ID, Post: l.PostID, User: l.UserID, CreatedAt: l.CreatedAt}
}

// LikeResult is the outcome of a like toggle
type LikeResult string

const (
	Liked   LikeResult = "liked"
	Unliked LikeResult = "unliked"
)
