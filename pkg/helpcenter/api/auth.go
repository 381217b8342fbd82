package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/render"
)

// EditorKeyHeader carries the shared editor credential
const EditorKeyHeader = "X-Editor-Key"

// EditorKeyAuth guards the private editor surface with a single shared key.
// The comparison is constant-time. An empty configured key locks the
// surface entirely rather than leaving it open.
func EditorKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(EditorKeyHeader)
			if key == "" || presented == "" ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, ErrorResponse{Error: "invalid editor key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
