package server

import (
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer builds a fully wired Server over an in-memory SQLite
// database and a miniredis instance.
func setupTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		SessionCookieName: "inkwell_session",
		Env:               "test",
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return s, db
}

func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsAdmin:  admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, published bool) *models.Post {
	t.Helper()
	post := models.Post{
		Title:  "Seeded post",
		Body:   "Seeded body text",
		UserID: authorID,
	}
	if published {
		at := time.Now().Add(-time.Hour)
		post.PublishedAt = &at
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return &post
}

func seedComment(t *testing.T, db *gorm.DB, postID uint, approved bool) *models.Comment {
	t.Helper()
	comment := models.Comment{
		PostID:     postID,
		AuthorName: "Visitor",
		Body:       "Seeded comment",
		Approved:   approved,
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return &comment
}
