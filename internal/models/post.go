package models

import "time"

// Post is a photo published by an author. Deleting it removes its
// comments and likes.
type Post struct {
	ID         uint       `json:"pk" gorm:"primaryKey"`
	AuthorID   uint       `json:"-" gorm:"not null;index"`
	Author     User       `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Photo      string     `json:"photo" gorm:"size:512;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ModifiedAt time.Time  `json:"modified_at" gorm:"autoUpdateTime"`
	Comments   []Comment  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Likes      []PostLike `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// PostView is a post as seen by a particular requester
type PostView struct {
	Post
	// IsLikedByRequester is nil for anonymous requesters and for posts they have not liked.
	IsLikedByRequester *PostLike
}

// PostResponse is the API shape of a post
type PostResponse struct {
	ID        uint              `json:"pk"`
	Author    UserCompact       `json:"author"`
	Photo     string            `json:"photo"`
	CreatedAt time.Time         `json:"created_at"`
	IsLike    *PostLikeResponse `json:"is_like"`
	Comments  []CommentResponse `json:"comments"`
}

// ToResponse converts a PostView to its API shape
func (v PostView) ToResponse() PostResponse {
	resp := PostResponse{
		ID:        v.ID,
		Author:    v.Author.ToCompact(),
		Photo:     v.Photo,
		CreatedAt: v.CreatedAt,
		Comments:  make([]CommentResponse, 0, len(v.Comments)),
	}
	if v.IsLikedByRequester != nil {
		like := v.IsLikedByRequester.ToResponse()
		resp.IsLike = &like
	}
	for _, c := range v.Comments {
		resp.Comments = append(resp.Comments, c.ToResponse())
	}
	return resp
}
