package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "frida", Email: "frida@example.com"}
	require.NoError(t, db.Create(user).Error)

	post := &models.Post{UserID: user.ID, Title: "Hello", Body: "First post"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, AuthorName: "Ada", Body: "approved", Approved: true}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, AuthorName: "Ada", Body: "pending"}).Error)

	fetched, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", fetched.Title)
	assert.Equal(t, "frida", fetched.User.Username)
	assert.Equal(t, 1, fetched.ApprovedCommentsCount)

	_, err = repo.GetByID(ctx, 9999)
	var appErr *models.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostRepository_Publish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{UserID: 1, Title: "Draft", Body: "..."}
	require.NoError(t, repo.Create(ctx, post))

	first := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, repo.Publish(ctx, post.ID, first))

	fetched, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.PublishedAt)
	assert.WithinDuration(t, first, *fetched.PublishedAt, time.Second)

	// A second publish must not move the timestamp.
	require.NoError(t, repo.Publish(ctx, post.ID, time.Now()))
	fetched, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, first, *fetched.PublishedAt, time.Second)
}

func TestPostRepository_ListPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "frida", Email: "frida@example.com"}
	require.NoError(t, db.Create(user).Error)

	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	older := &models.Post{UserID: user.ID, Title: "Older", Body: "...", PublishedAt: &old}
	newer := &models.Post{UserID: user.ID, Title: "Newer", Body: "...", PublishedAt: &recent}
	scheduled := &models.Post{UserID: user.ID, Title: "Scheduled", Body: "...", PublishedAt: &future}
	draft := &models.Post{UserID: user.ID, Title: "Draft", Body: "..."}
	for _, p := range []*models.Post{older, newer, scheduled, draft} {
		require.NoError(t, db.Create(p).Error)
	}

	posts, err := repo.ListPublished(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Newer", posts[0].Title)
	assert.Equal(t, "Older", posts[1].Title)
}

func TestPostRepository_ListDrafts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.Create(&models.Post{UserID: 1, Title: "Mine", Body: "..."}).Error)
	require.NoError(t, db.Create(&models.Post{UserID: 2, Title: "Theirs", Body: "..."}).Error)
	require.NoError(t, db.Create(&models.Post{UserID: 1, Title: "Live", Body: "...", PublishedAt: &now}).Error)

	t.Run("scoped to author", func(t *testing.T) {
		drafts, err := repo.ListDrafts(ctx, 1, 10, 0)
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Mine", drafts[0].Title)
	})

	t.Run("all authors", func(t *testing.T) {
		drafts, err := repo.ListDrafts(ctx, 0, 10, 0)
		require.NoError(t, err)
		assert.Len(t, drafts, 2)
	})
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{UserID: 1, Title: "Counted", Body: "..."}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, repo.IncrementViews(ctx, post.ID))
	require.NoError(t, repo.IncrementViews(ctx, post.ID))

	fetched, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), fetched.Views)
}
