package reactions

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb)
}

func TestSessionStore_GetSetRoundTrip(t *testing.T) {
	t.Parallel()
	store := setupSessionStore(t)
	ctx := context.Background()
	id := Identity{SessionKey: "visitor-1"}

	state, err := store.Get(ctx, id, 7)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	require.NoError(t, store.Set(ctx, id, 7, StateLiked))

	state, err = store.Get(ctx, id, 7)
	require.NoError(t, err)
	assert.Equal(t, StateLiked, state)

	// A different comment is unaffected.
	state, err = store.Get(ctx, id, 8)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestSessionStore_SetNoneDeletes(t *testing.T) {
	t.Parallel()
	store := setupSessionStore(t)
	ctx := context.Background()
	id := Identity{SessionKey: "visitor-2"}

	require.NoError(t, store.Set(ctx, id, 3, StateDisliked))
	require.NoError(t, store.Set(ctx, id, 3, StateNone))

	state, err := store.Get(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestSessionStore_SessionsAreIsolated(t *testing.T) {
	t.Parallel()
	store := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Identity{SessionKey: "a"}, 1, StateLiked))

	state, err := store.Get(ctx, Identity{SessionKey: "b"}, 1)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)
}

func TestSessionStore_GetAll(t *testing.T) {
	t.Parallel()
	store := setupSessionStore(t)
	ctx := context.Background()
	id := Identity{SessionKey: "visitor-3"}

	require.NoError(t, store.Set(ctx, id, 1, StateLiked))
	require.NoError(t, store.Set(ctx, id, 3, StateDisliked))

	states, err := store.GetAll(ctx, id, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]State{1: StateLiked, 3: StateDisliked}, states)
}

func TestSessionStore_MissingSessionKey(t *testing.T) {
	t.Parallel()
	store := setupSessionStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, Identity{}, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	err = store.Set(ctx, Identity{}, 1, StateLiked)
	assert.ErrorIs(t, err, ErrNoSession)

	// GetAll treats a missing session as simply having no state.
	states, err := store.GetAll(ctx, Identity{}, []uint{1, 2})
	assert.NoError(t, err)
	assert.Empty(t, states)
}
