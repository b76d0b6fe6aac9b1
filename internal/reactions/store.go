package reactions

import "context"

// Identity is the actor reacting to a comment: either an authenticated
// user (UserID set) or an anonymous visitor (SessionKey set). Exactly one
// of the two fields is populated.
type Identity struct {
	UserID     uint
	SessionKey string
}

// Anonymous reports whether the identity is session-scoped.
func (id Identity) Anonymous() bool {
	return id.UserID == 0
}

// Store holds per-identity reaction state for comments. The persistent
// implementation backs authenticated users with uniqueness-constrained
// rows; the session implementation backs anonymous visitors with
// ephemeral per-session storage. Both enforce at most one state per
// (identity, comment) pair; no entry exists for the none state.
type Store interface {
	Get(ctx context.Context, id Identity, commentID uint) (State, error)
	Set(ctx context.Context, id Identity, commentID uint, state State) error
	// GetAll returns the identity's state for every comment in commentIDs
	// that has one; comments without state are absent from the map.
	GetAll(ctx context.Context, id Identity, commentIDs []uint) (map[uint]State, error)
}
