package seed

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
	))
	return db
}

func TestSeed(t *testing.T) {
	db := setupSeedDB(t)

	err := Seed(db, Options{NumUsers: 4, NumPosts: 10, CommentsPerPost: 3})
	require.NoError(t, err)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 4, userCount)

	var admin models.User
	require.NoError(t, db.Where("is_admin = ?", true).First(&admin).Error)
	assert.Equal(t, "admin", admin.Username)

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 10, postCount)

	// Comments only land on published posts.
	var strays int64
	require.NoError(t, db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.published_at IS NULL").
		Count(&strays).Error)
	assert.Zero(t, strays)
}

func TestSeed_CountersMatchReactionRows(t *testing.T) {
	db := setupSeedDB(t)
	require.NoError(t, Seed(db, Options{NumUsers: 6, NumPosts: 8, CommentsPerPost: 4}))

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)

	for _, comment := range comments {
		var likes, dislikes int64
		require.NoError(t, db.Model(&models.Reaction{}).
			Where("comment_id = ? AND kind = ?", comment.ID, models.ReactionLike).
			Count(&likes).Error)
		require.NoError(t, db.Model(&models.Reaction{}).
			Where("comment_id = ? AND kind = ?", comment.ID, models.ReactionDislike).
			Count(&dislikes).Error)

		assert.EqualValues(t, comment.Likes, likes, "comment %d likes", comment.ID)
		assert.EqualValues(t, comment.Dislikes, dislikes, "comment %d dislikes", comment.ID)
	}
}

func TestSeed_CleanWipesExistingRows(t *testing.T) {
	db := setupSeedDB(t)
	require.NoError(t, db.Create(&models.User{Username: "leftover", Email: "x@y.z", Password: "pw"}).Error)

	require.NoError(t, Seed(db, Options{NumUsers: 3, NumPosts: 5, ShouldClean: true}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_CreateCommentThread(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	author, err := f.CreateUser()
	require.NoError(t, err)
	post, err := f.CreatePost(author, func(p *models.Post) {
		now := p.CreatedAt
		p.PublishedAt = &now
	})
	require.NoError(t, err)

	comments, err := f.CreateCommentThread(post, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(comments), 5)

	for _, c := range comments {
		assert.Equal(t, post.ID, c.PostID)
		if c.ParentID != nil {
			var parent models.Comment
			require.NoError(t, db.First(&parent, *c.ParentID).Error)
			assert.True(t, parent.Approved)
		}
	}
}
