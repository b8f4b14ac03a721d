// Package seed fills a development database with demo users, photo posts,
// hashtagged comments and likes. Everything goes through the services so the
// seeded rows obey the same rules as real traffic.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/services"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

// Options controls how much data a run creates
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	LikeChance      float64
	Seed            int64
}

// DefaultOptions is a small but browsable data set
var DefaultOptions = Options{Users: 5, PostsPerUser: 3, CommentsPerPost: 2, LikeChance: 0.4}

// Summary counts what a run created
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Factory builds demo entities through the services
type Factory struct {
	auth     *services.AuthService
	posts    *services.PostService
	comments *services.CommentService
	likes    *services.LikeService
	faker    *gofakeit.Faker
	rnd      *rand.Rand
	log      *zap.Logger
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(auth *services.AuthService, posts *services.PostService, comments *services.CommentService, likes *services.LikeService, seed int64, log *zap.Logger) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		auth:     auth,
		posts:    posts,
		comments: comments,
		likes:    likes,
		faker:    gofakeit.New(seed),
		rnd:      rand.New(rand.NewSource(seed)),
		log:      log,
	}
}

// Run creates opts.Users users, their posts and the comments and likes
// between them.
func (f *Factory) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.User(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, u)
		sum.Users++
	}

	for _, author := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post, err := f.Post(ctx, author)
			if err != nil {
				return sum, err
			}
			sum.Posts++

			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[f.rnd.Intn(len(users))]
				if _, err := f.comments.Create(ctx, commenter, post.ID, f.Caption()); err != nil {
					return sum, fmt.Errorf("seed comment: %w", err)
				}
				sum.Comments++
			}

			for _, u := range users {
				if f.rnd.Float64() >= opts.LikeChance {
					continue
				}
				if _, _, err := f.likes.Like(ctx, u, post.ID); err != nil {
					return sum, fmt.Errorf("seed like: %w", err)
				}
				sum.Likes++
			}
		}
	}

	f.log.Info("seed complete",
		zap.Int("users", sum.Users),
		zap.Int("posts", sum.Posts),
		zap.Int("comments", sum.Comments),
		zap.Int("likes", sum.Likes),
	)
	return sum, nil
}

// User signs up a fake account with the password "password123"
func (f *Factory) User(ctx context.Context) (*models.User, error) {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.faker.Number(100, 9999))
	resp, err := f.auth.Signup(ctx, models.SignupRequest{
		Username: username,
		Password: "password123",
		Email:    f.faker.Email(),
	})
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", username, err)
	}
	return &resp.User, nil
}

// Post uploads a generated jpeg with a hashtagged caption
func (f *Factory) Post(ctx context.Context, author *models.User) (*models.PostView, error) {
	img := f.faker.ImageJpeg(320, 240)
	view, err := f.posts.CreatePost(ctx, author, services.CreatePostInput{
		Photo: &services.Upload{
			Filename:    f.faker.Word() + ".jpg",
			ContentType: "image/jpeg",
			Size:        int64(len(img)),
			Body:        bytes.NewReader(img),
		},
		Comment: f.Caption(),
	})
	if err != nil {
		return nil, fmt.Errorf("seed post: %w", err)
	}
	return view, nil
}

// Caption is a short sentence followed by one to three hashtags
func (f *Factory) Caption() string {
	var b strings.Builder
	b.WriteString(f.faker.Sentence(6))
	for i := 0; i <= f.rnd.Intn(3); i++ {
		b.WriteString(" #")
		b.WriteString(strings.ToLower(f.faker.Noun()))
	}
	return b.String()
}
