package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post. PublishedAt is nil while the post is a
// draft; publishing sets it exactly once and there is no unpublish.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ImageURL    string     `json:"image_url,omitempty"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	Views       uint       `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
	// ApprovedCommentsCount is not persisted; computed at query time
	ApprovedCommentsCount int `gorm:"->" json:"approved_comments_count"`
	// Preview is derived from Body for listings; never persisted
	Preview   string         `gorm:"-" json:"preview,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Published reports whether the post is visible to the public.
func (p *Post) Published() bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	leadingBlanks = regexp.MustCompile(`^(\s|&nbsp;)+`)
)

// PreviewText strips markup from the body and truncates it to wordLimit
// words, appending an ellipsis when truncated.
func (p *Post) PreviewText(wordLimit int) string {
	text := tagPattern.ReplaceAllString(p.Body, " ")
	text = leadingBlanks.ReplaceAllString(text, "")
	words := strings.Fields(text)
	if len(words) > wordLimit {
		return strings.Join(words[:wordLimit], " ") + "..."
	}
	return strings.Join(words, " ")
}
