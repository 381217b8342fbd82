package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
)

// IdentityFunc extracts the caller identity a request is limited by
type IdentityFunc func(r *http.Request) string

// ClientIP identifies public callers by IP, trusting the left-most
// X-Forwarded-For entry set by the fronting proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// EditorPrincipal identifies all editor traffic as one principal. The
// editor API authenticates with a single shared key, so there is no finer
// identity to use.
func EditorPrincipal(r *http.Request) string {
	return "editor"
}

// Middleware returns a chi middleware enforcing the quota for class.
// Rejected requests get 429 with Retry-After; admitted requests carry the
// usual X-RateLimit headers.
func Middleware(limiter *Limiter, class Class, identity IdentityFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Allow(r.Context(), class, identity(r))

			if decision.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			}

			if !decision.Allowed {
				denied := Denied(class, decision)
				w.Header().Set("Retry-After", strconv.Itoa(int(denied.RetryAfter.Seconds())))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]string{
					"error": denied.Error(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
