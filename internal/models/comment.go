package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. AuthorName is free text supplied
// by the visitor and is not tied to a User account. ParentID is nil for
// top-level comments and references another comment on the same post for
// replies. Comments start unapproved unless submitted by an admin.
type Comment struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PostID     uint   `gorm:"not null;index" json:"post_id"`
	Post       Post   `gorm:"foreignKey:PostID" json:"-"`
	ParentID   *uint  `gorm:"index" json:"parent_id,omitempty"`
	AuthorName string `gorm:"size:200;not null" json:"author_name"`
	Body       string `gorm:"type:text;not null" json:"body"`
	Approved   bool   `gorm:"not null;default:false;index" json:"approved"`
	Likes      int    `gorm:"not null;default:0" json:"likes"`
	Dislikes   int    `gorm:"not null;default:0" json:"dislikes"`
	// MyReaction is the requesting identity's reaction state ("", "like" or
	// "dislike"); computed per request, never persisted
	MyReaction string `gorm:"-" json:"my_reaction,omitempty"`
	// Replies is populated when listing comments as a thread
	Replies   []*Comment     `gorm:"-" json:"replies,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
