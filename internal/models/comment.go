package models

import "time"

// Comment is a remark on a post. HTML and Tags are derived from Content
// on every save and are never written independently.
type Comment struct {
	ID        uint      `json:"pk" gorm:"primaryKey"`
	PostID    uint      `json:"post" gorm:"not null;index"`
	AuthorID  uint      `json:"-" gorm:"not null;index"`
	Author    User      `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	HTML      string    `json:"html" gorm:"column:html;type:text;not null;default:''"`
	Tags      []HashTag `json:"-" gorm:"many2many:comment_tags;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentResponse is the API shape of a comment
type CommentResponse struct {
	ID      uint        `json:"pk"`
	Author  UserCompact `json:"author"`
	Content string      `json:"content"`
	HTML    string      `json:"html"`
}

// ToResponse converts a Comment to its API shape
func (c Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Author:  c.Author.ToCompact(),
		Content: c.Content,
		HTML:    c.HTML,
	}
}

// TagNames returns the names of the comment's tags
func (c Comment) TagNames() []string {
	names := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		names = append(names, t.Name)
	}
	return names
}

// CommentRequest defines the request body for creating or editing a comment
type CommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,max=2000"`
}
