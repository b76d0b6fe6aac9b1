package reactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionReactionTTL = 30 * 24 * time.Hour

// ErrNoSession is returned when a session-scoped operation is attempted
// without an established session key.
var ErrNoSession = errors.New("reactions: identity has no session")

// ErrStoreUnavailable is returned on writes when Redis is not configured.
var ErrStoreUnavailable = errors.New("reactions: session store unavailable")

// SessionStore keeps anonymous reaction state in a Redis hash per session
// key, field-per-comment. State lives as long as the session TTL; the TTL
// is refreshed on every write.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a session-backed reaction store.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:reactions", sessionID)
}

func (s *SessionStore) Get(ctx context.Context, id Identity, commentID uint) (State, error) {
	if id.SessionKey == "" {
		return StateNone, ErrNoSession
	}
	if s.rdb == nil {
		return StateNone, nil
	}
	val, err := s.rdb.HGet(ctx, sessionKey(id.SessionKey), strconv.FormatUint(uint64(commentID), 10)).Result()
	if errors.Is(err, redis.Nil) {
		return StateNone, nil
	}
	if err != nil {
		return StateNone, err
	}
	return State(val), nil
}

func (s *SessionStore) Set(ctx context.Context, id Identity, commentID uint, state State) error {
	if id.SessionKey == "" {
		return ErrNoSession
	}
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	key := sessionKey(id.SessionKey)
	field := strconv.FormatUint(uint64(commentID), 10)

	if state == StateNone {
		return s.rdb.HDel(ctx, key, field).Err()
	}
	if err := s.rdb.HSet(ctx, key, field, string(state)).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, sessionReactionTTL).Err()
}

func (s *SessionStore) GetAll(ctx context.Context, id Identity, commentIDs []uint) (map[uint]State, error) {
	states := make(map[uint]State, len(commentIDs))
	if id.SessionKey == "" || len(commentIDs) == 0 || s.rdb == nil {
		return states, nil
	}

	fields := make([]string, len(commentIDs))
	for i, cid := range commentIDs {
		fields[i] = strconv.FormatUint(uint64(cid), 10)
	}

	vals, err := s.rdb.HMGet(ctx, sessionKey(id.SessionKey), fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str != "" {
			states[commentIDs[i]] = State(str)
		}
	}
	return states, nil
}
