package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session Metrics
var (
	// ActiveSessions tracks sessions held by the session store. Sessions are never evicted.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_sessions_current",
			Help: "Number of screen sessions held in memory",
		},
	)

	// ConnectedPeers tracks attached connections by role (producer/consumer)
	ConnectedPeers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_connected_peers_current",
			Help: "Currently attached connections by role",
		},
		[]string{"role"},
	)

	// HandshakeRejections tracks connections refused before registration
	HandshakeRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_handshake_rejections_total",
			Help: "Connections rejected at handshake by reason",
		},
		[]string{"reason"},
	)

	// SyncsReceived tracks accepted producer sync messages
	SyncsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_syncs_received_total",
			Help: "Total sync messages accepted from producers",
		},
	)

	// MalformedMessages tracks inbound frames dropped as unparseable or role-inappropriate
	MalformedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_inbound_dropped_total",
			Help: "Inbound messages dropped by reason",
		},
		[]string{"reason"},
	)
)

// Broadcast Metrics
var (
	// ContentUpdatesSent tracks contentUpdate frames queued to consumers by kind (broadcast/catchup)
	ContentUpdatesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_content_updates_sent_total",
			Help: "contentUpdate frames queued for delivery by kind",
		},
		[]string{"kind"},
	)

	// SendsDropped tracks frames that could not be queued by reason (closed/backpressure)
	SendsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_sends_dropped_total",
			Help: "Frames dropped for a consumer by reason",
		},
		[]string{"reason"},
	)

	// BroadcastFanout tracks how many recipients each broadcast addressed
	BroadcastFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_broadcast_fanout",
			Help:    "Recipients addressed per broadcast",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketConnectionsTotal tracks accepted upgrades
	WebSocketConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total WebSocket upgrades accepted",
		},
	)

	// WebSocketConnectionsRejected tracks upgrades refused by admission control
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "WebSocket connections rejected by admission control",
		},
		[]string{"reason"},
	)

	// WebSocketMessageSendDuration tracks time spent writing one frame
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "Time to write one WebSocket frame",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// WebSocketPingFailures tracks keepalive pings that failed to write
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed WebSocket pings",
		},
	)
)

// Persistence Metrics
var (
	// SnapshotOpsTotal tracks snapshot store operations by operation and status
	SnapshotOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_operations_total",
			Help: "Snapshot store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// SnapshotWriteDuration tracks end-to-end persisted write latency including retries
	SnapshotWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_write_duration_seconds",
			Help:    "Snapshot write duration including retries",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
	)

	// SnapshotWritesCoalesced tracks writes replaced by newer content before they ran
	SnapshotWritesCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_writes_coalesced_total",
			Help: "Pending snapshot writes superseded by newer content",
		},
	)

	// RedisOpsTotal tracks Redis commands by command name and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency by command name
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration by operation",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .5},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed dials
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerState tracks breaker state per component (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerStateChanges counts breaker transitions by component and target state
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "to_state"},
	)

	// DBQueryDuration tracks Postgres query latency by leading SQL keyword
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration by query type",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks failed Postgres queries by leading SQL keyword
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Database query errors by query type",
		},
		[]string{"query"},
	)
)
