// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
	AdminEmail      string
	AdminPassword   string
}

// Seed populates the database with demo users, posts, comments and
// reactions. One admin account is always created so the moderation
// queue can be exercised right away.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 5
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 20
	}
	if opts.CommentsPerPost <= 0 {
		opts.CommentsPerPost = 4
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@inkwell.local"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "Admin-inkwell-1!"
	}

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clearing data: %w", err)
		}
	}

	f := NewFactory(db)

	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = opts.AdminEmail
		u.IsAdmin = true
	}, withPassword(opts.AdminPassword))
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	log.Printf("Seeded admin user %s (%s)", admin.Username, admin.Email)

	users := []*models.User{admin}
	for i := 1; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	var published []*models.Post
	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return fmt.Errorf("creating post %d: %w", i, err)
		}
		if post.PublishedAt != nil {
			published = append(published, post)
		}
	}
	log.Printf("Seeded %d posts (%d published)", opts.NumPosts, len(published))

	var totalComments int
	for _, post := range published {
		comments, err := f.CreateCommentThread(post, opts.CommentsPerPost)
		if err != nil {
			return fmt.Errorf("commenting post %d: %w", post.ID, err)
		}
		totalComments += len(comments)

		for _, comment := range comments {
			if !comment.Approved {
				continue
			}
			if err := f.ReactToComment(comment, users); err != nil {
				return fmt.Errorf("reacting to comment %d: %w", comment.ID, err)
			}
		}
	}
	log.Printf("Seeded %d comments across %d published posts", totalComments, len(published))

	return nil
}

// clearData wipes seeded tables. Order matters for foreign keys.
func clearData(db *gorm.DB) error {
	tables := []string{"reactions", "comments", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func withPassword(plain string) func(*models.User) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on absurd cost values
		panic(err)
	}
	return func(u *models.User) {
		u.Password = string(hash)
	}
}

// timestampSpread returns a time up to maxDays in the past for realistic
// created_at distributions.
func timestampSpread(maxDays int) time.Time {
	daysBack := rand.Intn(maxDays)
	hoursBack := rand.Intn(24)
	minsBack := rand.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack) * 24 * time.Hour).
		Add(-time.Duration(hoursBack) * time.Hour).
		Add(-time.Duration(minsBack) * time.Minute)
}
