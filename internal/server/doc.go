// Package server is the HTTP surface of the relay, built on Echo.
//
// Routes: the WebSocket relay endpoint (/ws and /), health checks, Prometheus
// metrics, build info and a read-only screens API.
// Handlers split by concern: handlers_ws.go, handlers_health.go, handlers_api.go.
package server
