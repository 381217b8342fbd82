package ratelimit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/help-center/pkg/helpcenter"
)

func newTestLimiter(t *testing.T, policy Policy) (*Limiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := New(NewRedisStore(client), policy,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return now }),
	)
	return limiter, mr, &now
}

func TestLimiterAllowWithinQuota(t *testing.T) {
	limiter, _, _ := newTestLimiter(t, Policy{
		PublicWrite: {Limit: 3, Window: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := limiter.Allow(ctx, PublicWrite, "1.2.3.4")
		assert.True(t, d.Allowed)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d := limiter.Allow(ctx, PublicWrite, "1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestLimiterIdentitiesAreIndependent(t *testing.T) {
	limiter, _, _ := newTestLimiter(t, Policy{
		PublicWrite: {Limit: 1, Window: time.Minute},
	})
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed)
	assert.False(t, limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed)
	assert.True(t, limiter.Allow(ctx, PublicWrite, "5.6.7.8").Allowed)
}

func TestLimiterClassesAreIndependent(t *testing.T) {
	limiter, _, _ := newTestLimiter(t, Policy{
		PublicRead:  {Limit: 1, Window: time.Minute},
		PublicWrite: {Limit: 1, Window: time.Minute},
	})
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, PublicRead, "1.2.3.4").Allowed)
	assert.False(t, limiter.Allow(ctx, PublicRead, "1.2.3.4").Allowed)
	assert.True(t, limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed)
}

func TestLimiterWindowRollover(t *testing.T) {
	limiter, mr, now := newTestLimiter(t, Policy{
		PublicWrite: {Limit: 1, Window: time.Minute},
	})
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed)
	assert.False(t, limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed)

	*now = now.Add(time.Minute)
	mr.FastForward(time.Minute)

	d := limiter.Allow(ctx, PublicWrite, "1.2.3.4")
	assert.True(t, d.Allowed, "a new window starts with a fresh counter")
}

func TestLimiterUnconfiguredClassIsUnlimited(t *testing.T) {
	limiter, _, _ := newTestLimiter(t, Policy{})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(ctx, PublicRead, "1.2.3.4").Allowed)
	}
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	limiter, mr, _ := newTestLimiter(t, Policy{
		PublicWrite: {Limit: 1, Window: time.Minute},
	})
	ctx := context.Background()

	mr.Close()

	d := limiter.Allow(ctx, PublicWrite, "1.2.3.4")
	assert.True(t, d.Allowed, "store outage must not reject traffic")
}

func TestLimiterConcurrentAdmitsExactlyLimit(t *testing.T) {
	const limit = 20
	limiter, _, _ := newTestLimiter(t, Policy{
		PublicWrite: {Limit: limit, Window: time.Minute},
	})
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < limit+5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx, PublicWrite, "1.2.3.4").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), allowed.Load())
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	limiter, _, _ := newTestLimiter(t, Policy{
		PublicRead: {Limit: 1, Window: time.Minute},
	})

	var hits atomic.Int64
	handler := Middleware(limiter, PublicRead, ClientIP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/guides", nil)
	req.RemoteAddr = "1.2.3.4:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, int64(1), hits.Load())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], string(PublicRead), "the rejection names its class")
}

func TestDenied(t *testing.T) {
	denied := Denied(PublicWrite, Decision{RetryAfter: 30 * time.Second})
	assert.ErrorIs(t, denied, helpcenter.ErrRateLimited)
	assert.Equal(t, 30*time.Second, denied.RetryAfter)
	assert.Contains(t, denied.Error(), "public-write")

	floored := Denied(PublicWrite, Decision{RetryAfter: 200 * time.Millisecond})
	assert.Equal(t, time.Second, floored.RetryAfter)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	assert.Equal(t, "10.0.0.9", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
