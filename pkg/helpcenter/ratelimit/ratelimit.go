// Package ratelimit provides fixed-window request limiting shared by both
// API surfaces. Counters live in a pluggable store (Redis in production) so
// the window is enforced across replicas, not per process.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/help-center/pkg/helpcenter"
)

// Class buckets endpoints with similar cost and audience. Each class gets
// its own quota and its own counter namespace.
type Class string

const (
	PublicRead    Class = "public-read"
	PublicWrite   Class = "public-write"
	PrivateRead   Class = "private-read"
	PrivateWrite  Class = "private-write"
	PrivateUpload Class = "private-upload"
)

// Quota is N requests per fixed window
type Quota struct {
	Limit  int
	Window time.Duration
}

// Policy maps endpoint classes to quotas. Classes absent from the policy
// are not limited.
type Policy map[Class]Quota

// DefaultPolicy returns the quotas used when configuration does not
// override them. Public reads are generous, writes and uploads tight.
func DefaultPolicy() Policy {
	return Policy{
		PublicRead:    {Limit: 120, Window: time.Minute},
		PublicWrite:   {Limit: 10, Window: time.Minute},
		PrivateRead:   {Limit: 300, Window: time.Minute},
		PrivateWrite:  {Limit: 60, Window: time.Minute},
		PrivateUpload: {Limit: 20, Window: time.Minute},
	}
}

// CounterStore increments the counter behind key and returns its new value.
// The implementation must apply ttl only when it creates the key, so every
// request in a window shares one expiry.
type CounterStore interface {
	IncrementAndGet(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Decision is the outcome of one admission check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Denied turns a rejecting Decision into the domain error reported to
// clients. Retry-After is floored at one second so it stays a useful
// integer header value.
func Denied(class Class, d Decision) *helpcenter.RateLimitError {
	retryAfter := d.RetryAfter
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return &helpcenter.RateLimitError{Class: string(class), RetryAfter: retryAfter}
}

// Limiter admits or rejects requests per (class, identity) pair
type Limiter struct {
	store  CounterStore
	policy Policy
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithLogger sets the logger used for store failures
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter over the given counter store and policy
func New(store CounterStore, policy Policy, options ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		policy: policy,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Allow checks one request against the quota for class. Identity is the
// caller: a client IP for public traffic, the editor principal for private
// traffic.
//
// A store failure admits the request (fail open): degraded throttling beats
// a hard outage of read-mostly content endpoints.
func (l *Limiter) Allow(ctx context.Context, class Class, identity string) Decision {
	quota, ok := l.policy[class]
	if !ok || quota.Limit <= 0 {
		return Decision{Allowed: true, Limit: 0, Remaining: 0}
	}

	now := l.now()
	windowStart := now.Truncate(quota.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", class, identity, windowStart.Unix())

	count, err := l.store.IncrementAndGet(ctx, key, quota.Window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, admitting request",
			"class", string(class), "error", err)
		return Decision{Allowed: true, Limit: quota.Limit, Remaining: quota.Limit}
	}

	remaining := quota.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	if count > int64(quota.Limit) {
		return Decision{
			Allowed:    false,
			Limit:      quota.Limit,
			Remaining:  0,
			RetryAfter: windowStart.Add(quota.Window).Sub(now),
		}
	}

	return Decision{Allowed: true, Limit: quota.Limit, Remaining: remaining}
}
