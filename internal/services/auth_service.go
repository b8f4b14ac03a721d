package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier verifies identity tokens issued by a third party.
// *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthConfig holds the token settings of AuthService
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	FirebaseTimeout time.Duration
}

// AuthService signs users up, logs them in and resolves tokens to users
type AuthService struct {
	users    repositories.UserRepository
	verifier TokenVerifier
	cfg      AuthConfig
	log      *zap.Logger
}

// NewAuthService creates a new AuthService. A nil verifier disables
// firebase login.
func NewAuthService(users repositories.UserRepository, verifier TokenVerifier, cfg AuthConfig, log *zap.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	if cfg.FirebaseTimeout <= 0 {
		cfg.FirebaseTimeout = 5 * time.Second
	}
	return &AuthService{users: users, verifier: verifier, cfg: cfg, log: log}
}

// Signup creates a local account and logs it in
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthTokenResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("a user with that username already exists: %w", apperrors.ErrConflict)
		}
		return nil, err
	}
	return s.respond(user)
}

// Login exchanges a username and password for a token
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AuthTokenResponse, error) {
	invalid := apperrors.NewValidationError("non_field_errors", "Unable to log in with provided credentials.")

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return s.respond(user)
}

// FirebaseLogin verifies a firebase ID token and logs in the matching user,
// creating it on first sight. Verification is bounded by the configured
// timeout; an unreachable verifier yields ErrUnavailable and a rejected
// token ErrUnauthorized.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthTokenResponse, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("firebase login is not configured: %w", apperrors.ErrUnavailable)
	}

	vctx, cancel := context.WithTimeout(ctx, s.cfg.FirebaseTimeout)
	defer cancel()
	token, err := s.verifier.VerifyIDToken(vctx, idToken)
	if err != nil {
		if vctx.Err() != nil {
			s.log.Warn("firebase verification timed out", zap.Error(err))
			return nil, fmt.Errorf("verify firebase token: %w", apperrors.ErrUnavailable)
		}
		return nil, fmt.Errorf("invalid firebase ID token: %w", apperrors.ErrUnauthorized)
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return s.respond(user)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	uid := token.UID
	user = &models.User{
		Username:    usernameFor(name, email, uid),
		Email:       email,
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		user.ID = 0
		user.Username = truncate(user.Username, 140) + "_" + truncate(uid, 8)
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.respond(user)
}

// Authenticate resolves a token issued by this service to its user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// IssueToken signs a token for user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// TokenTTL returns how long issued tokens stay valid
func (s *AuthService) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

func (s *AuthService) respond(user *models.User) (*models.AuthTokenResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthTokenResponse{Token: token, User: *user}, nil
}

var usernameInvalid = regexp.MustCompile(`[^\w.@+-]+`)

// usernameFor picks a username for a firebase account
func usernameFor(name, email, uid string) string {
	candidate := name
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		candidate = local
	}
	candidate = usernameInvalid.ReplaceAllString(candidate, "")
	if len(candidate) < 2 {
		candidate = "user_" + truncate(uid, 8)
	}
	return truncate(candidate, 150)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
