package models

import "time"

// ReactionKind is the kind of reaction a reader left on a comment.
type ReactionKind string

const (
	// ReactionLike marks a comment as liked.
	ReactionLike ReactionKind = "like"
	// ReactionDislike marks a comment as disliked.
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is a known reaction kind.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction records an authenticated user's reaction to a comment.
// The combination of UserID and CommentID must be unique; anonymous
// readers keep the equivalent state in session storage instead.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_user_comment" json:"user_id"`
	CommentID uint         `gorm:"not null;uniqueIndex:idx_user_comment" json:"comment_id"`
	Kind      ReactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	CreatedAt time.Time    `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Comment Comment `gorm:"foreignKey:CommentID" json:"-"`
}
