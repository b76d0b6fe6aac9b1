// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ReactionTransitions counts reaction state machine transitions by
	// requested kind and outcome (applied, noop, switched).
	ReactionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_transitions_total",
		Help: "Total reaction state transitions by kind and outcome",
	}, []string{"kind", "outcome"})

	// CommentsSubmitted counts comment submissions by initial state.
	CommentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_submitted_total",
		Help: "Total comments submitted by initial approval state",
	}, []string{"state"})

	// CommentsApproved counts moderator approvals.
	CommentsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_comments_approved_total",
		Help: "Total comments approved by moderators",
	})

	// PostsPublished counts posts transitioned from draft to published.
	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_posts_published_total",
		Help: "Total posts published",
	})

	// WebSocketConnections is the gauge of active event-stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_websocket_backpressure_drops_total",
		Help: "Total WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
