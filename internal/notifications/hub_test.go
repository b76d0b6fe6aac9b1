package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast([]byte(`{"type":"post.published"}`))
	select {
	case msg := <-client.Send:
		assert.JSONEq(t, `{"type":"post.published"}`, string(msg))
	default:
		t.Fatal("expected a broadcast message")
	}

	hub.Unregister(client)
	assert.Zero(t, hub.ClientCount())
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(nil)
	require.NoError(t, err)
	defer hub.Unregister(client)

	// Overflow the send buffer; Broadcast must keep returning.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(client.Send)+10; i++ {
			hub.Broadcast([]byte("event"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartSubscriber(ctx, func(payload string) {
		received <- payload
	}))

	// Give the subscriber a moment to attach.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, notifier.Publish(ctx, Event{Type: EventCommentApproved, PostID: 1, CommentID: 2}))

	select {
	case payload := <-received:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, EventCommentApproved, ev.Type)
		assert.Equal(t, uint(1), ev.PostID)
		assert.Equal(t, uint(2), ev.CommentID)
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	ctx := context.Background()
	assert.NoError(t, notifier.Publish(ctx, Event{Type: EventPostPublished, PostID: 1}))
	assert.NoError(t, notifier.StartSubscriber(ctx, func(string) {}))
}
