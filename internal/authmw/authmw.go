// Package authmw provides HTTP middleware for bearer token authentication.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken returns middleware that admits requests whose Authorization
// header carries a bearer token matching any of tokens. Several tokens
// allow rotation without downtime. Empty tokens never match. onReject, if
// non-nil, is called for every rejected request before the 401 is written.
func BearerToken(onReject func(*http.Request), tokens ...string) func(http.Handler) http.Handler {
	var expected [][]byte
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			expected = append(expected, []byte(t))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, bearerPrefix) {
				reject(w, r, onReject, "missing or malformed authorization header")
				return
			}

			if !matchAny([]byte(auth[len(bearerPrefix):]), expected) {
				reject(w, r, onReject, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchAny compares got against every candidate so the time taken does not
// depend on which one matched.
func matchAny(got []byte, candidates [][]byte) bool {
	match := 0
	for _, c := range candidates {
		match |= subtle.ConstantTimeCompare(got, c)
	}
	return match == 1
}

func reject(w http.ResponseWriter, r *http.Request, onReject func(*http.Request), msg string) {
	if onReject != nil {
		onReject(r)
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="acuity"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}` + "\n"))
}
