package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	rateSweepInterval = 5 * time.Minute
	rateIdleTTL       = 10 * time.Minute
)

// LimitReason describes why a connection was refused. It doubles as a metric label.
type LimitReason string

const (
	LimitReasonGlobal LimitReason = "global_limit"
	LimitReasonPerIP  LimitReason = "per_ip_limit"
	LimitReasonRate   LimitReason = "rate_limit"
)

// AdmissionLimits are the knobs for Admission.
type AdmissionLimits struct {
	MaxConnections int64
	MaxPerIP       int
	RatePerSecond  float64
	Burst          int
}

// Admission decides whether a new WebSocket connection may be upgraded.
// It enforces an instance-wide cap, a per-IP cap and a per-IP token bucket
// on new connections.
type Admission struct {
	clock  clockwork.Clock
	limits AdmissionLimits

	total atomic.Int64

	mu      sync.Mutex
	perIP   map[string]int
	buckets map[string]*bucket
	sweepAt time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewAdmission(limits AdmissionLimits, clock clockwork.Clock) *Admission {
	return &Admission{
		clock:   clock,
		limits:  limits,
		perIP:   make(map[string]int),
		buckets: make(map[string]*bucket),
		sweepAt: clock.Now().Add(rateSweepInterval),
	}
}

// Acquire reserves a slot for ip. A successful Acquire must be paired with Release.
func (a *Admission) Acquire(ip string) (bool, LimitReason) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	if !a.allowLocked(ip, now) {
		return false, LimitReasonRate
	}

	if !a.reserveGlobal() {
		return false, LimitReasonGlobal
	}

	if a.perIP[ip] >= a.limits.MaxPerIP {
		a.total.Add(-1)
		return false, LimitReasonPerIP
	}
	a.perIP[ip]++
	return true, ""
}

func (a *Admission) reserveGlobal() bool {
	for {
		current := a.total.Load()
		if current >= a.limits.MaxConnections {
			return false
		}
		if a.total.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// allowLocked takes one token from ip's bucket. Must be called with mu held.
func (a *Admission) allowLocked(ip string, now time.Time) bool {
	if now.After(a.sweepAt) {
		a.sweepLocked(now)
		a.sweepAt = now.Add(rateSweepInterval)
	}

	b, ok := a.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(a.limits.RatePerSecond), a.limits.Burst)}
		a.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweepLocked drops buckets idle for longer than rateIdleTTL. Must be called with mu held.
func (a *Admission) sweepLocked(now time.Time) {
	cutoff := now.Add(-rateIdleTTL)
	for ip, b := range a.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(a.buckets, ip)
		}
	}
}

// Release returns the slot reserved for ip.
func (a *Admission) Release(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count, ok := a.perIP[ip]
	if !ok {
		return
	}
	if count <= 1 {
		delete(a.perIP, ip)
	} else {
		a.perIP[ip] = count - 1
	}
	a.total.Add(-1)
}

// Active returns the number of admitted connections.
func (a *Admission) Active() int64 {
	return a.total.Load()
}

// ActiveFrom returns the number of admitted connections from ip.
func (a *Admission) ActiveFrom(ip string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.perIP[ip]
}

func (a *Admission) trackedBuckets() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buckets)
}
