// Package notifications delivers blog events to connected readers in real
// time: new publications, comment activity, and reaction counter changes.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel all blog events flow through.
const EventsChannel = "events:blog"

// Event types published by the handlers.
const (
	EventPostPublished   = "post.published"
	EventCommentCreated  = "comment.created"
	EventCommentApproved = "comment.approved"
	EventReactionUpdated = "reaction.updated"
)

// Event is a blog activity notification. CommentID is zero for post-level
// events.
type Event struct {
	Type      string    `json:"type"`
	PostID    uint      `json:"post_id"`
	CommentID uint      `json:"comment_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier publishes events into Redis so every server instance can fan
// them out to its own WebSocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends an event to the shared channel. With no Redis configured it
// is a no-op so single-instance deployments still work.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, EventsChannel, payload).Err()
}

// StartSubscriber subscribes to the events channel and calls onMessage for
// each payload until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
