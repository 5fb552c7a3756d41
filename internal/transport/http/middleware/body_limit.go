package middleware

import "net/http"

// BodyLimit caps how much of a mutating request's body a handler can read.
// Once the cap is crossed the handler's decode fails, so no endpoint needs
// its own size check.
func BodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max > 0 {
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodPatch:
					r.Body = http.MaxBytesReader(w, r.Body, max)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
