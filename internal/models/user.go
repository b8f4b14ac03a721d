package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an account that authors posts, comments and likes.
type User struct {
	ID          uint      `json:"pk" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string    `json:"email,omitempty" gorm:"size:254"`
	Password    string    `json:"-"` // bcrypt hash, empty for firebase-only accounts
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex"`
	CreatedAt   time.Time `json:"date_joined"`
	UpdatedAt   time.Time `json:"-"`
}

// UserCompact is the minimal nested user shape used inside posts and comments
type UserCompact struct {
	ID       uint   `json:"pk"`
	Username string `json:"username"`
}

// ToCompact converts a User to its nested representation
func (u User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

// SignupRequest defines the request body for creating a local account
type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=150,username"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
}

// LoginRequest defines the request body for exchanging credentials for a token
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthTokenResponse is returned by every successful login
type AuthTokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
