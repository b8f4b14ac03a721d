package models

// HashTag is a tag name referenced by comments. Rows are created lazily
// and never deleted.
type HashTag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:text;uniqueIndex;not null"`
}
