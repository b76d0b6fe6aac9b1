// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(gofakeit.Password(true, true, true, true, false, 16)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hash),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a post by the given author. Roughly
// three in four posts come out published, the rest stay drafts.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:     gofakeit.Sentence(5),
		Body:      gofakeit.Paragraph(3, 5, 12, "\n\n"),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		UserID:    author.ID,
		Views:     uint(gofakeit.Number(0, 5000)),
		CreatedAt: timestampSpread(90),
	}
	if rand.Intn(4) != 0 {
		at := post.CreatedAt.Add(time.Duration(rand.Intn(72)) * time.Hour)
		if at.After(time.Now()) {
			at = time.Now().Add(-time.Minute)
		}
		post.PublishedAt = &at
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateCommentThread persists count top-level comments on the post plus
// occasional replies. Most comments come out approved; roughly one in
// four waits in the moderation queue. Replies are only attached to
// approved parents.
func (f *Factory) CreateCommentThread(post *models.Post, count int) ([]*models.Comment, error) {
	var comments []*models.Comment
	for i := 0; i < count; i++ {
		comment, err := f.CreateComment(post, nil)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)

		if comment.Approved && rand.Intn(3) == 0 {
			reply, err := f.CreateComment(post, &comment.ID)
			if err != nil {
				return nil, err
			}
			comments = append(comments, reply)
		}
	}
	return comments, nil
}

// CreateComment constructs and persists one comment, optionally as a
// reply to parentID.
func (f *Factory) CreateComment(post *models.Post, parentID *uint, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:     post.ID,
		ParentID:   parentID,
		AuthorName: gofakeit.Name(),
		Body:       gofakeit.Paragraph(1, 2, 8, " "),
		Approved:   rand.Intn(4) != 0,
		CreatedAt:  timestampSpread(30),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// ReactToComment makes a random subset of users react to the comment and
// keeps the denormalized counters in line with the reaction rows.
func (f *Factory) ReactToComment(comment *models.Comment, users []*models.User) error {
	var likes, dislikes int
	for _, user := range users {
		switch rand.Intn(3) {
		case 0:
			continue
		case 1:
			if err := f.createReaction(user.ID, comment.ID, models.ReactionLike); err != nil {
				return err
			}
			likes++
		case 2:
			if err := f.createReaction(user.ID, comment.ID, models.ReactionDislike); err != nil {
				return err
			}
			dislikes++
		}
	}
	if likes == 0 && dislikes == 0 {
		return nil
	}
	return f.db.Model(&models.Comment{}).Where("id = ?", comment.ID).
		Updates(map[string]interface{}{"likes": likes, "dislikes": dislikes}).Error
}

func (f *Factory) createReaction(userID, commentID uint, kind models.ReactionKind) error {
	return f.db.Create(&models.Reaction{
		UserID:    userID,
		CommentID: commentID,
		Kind:      kind,
	}).Error
}
