// Package redis stores screen snapshots in Redis.
//
// Every client carries two hooks: MetricsHook records command counts and latency, CircuitBreakerHook fails
// fast while Redis is unhealthy and serves recently read snapshots from a short-lived cache.
package redis
