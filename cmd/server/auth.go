package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// adminAuth guards the rate card write routes with a static bearer token.
type adminAuth struct {
	tokenHash [32]byte
	enabled   bool
}

func newAdminAuth(token string) *adminAuth {
	token = strings.TrimSpace(token)
	return &adminAuth{tokenHash: sha256.Sum256([]byte(token)), enabled: token != ""}
}

// valid compares digests so the comparison time does not depend on the
// token length.
func (a *adminAuth) valid(provided string) bool {
	sum := sha256.Sum256([]byte(provided))
	return subtle.ConstantTimeCompare(a.tokenHash[:], sum[:]) == 1
}

func (a *adminAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			writeError(w, http.StatusForbidden, "admin routes are disabled", "")
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !a.valid(strings.TrimSpace(token)) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="renoquote"`)
			writeError(w, http.StatusUnauthorized, "invalid or missing admin token", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
