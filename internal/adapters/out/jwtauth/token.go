package jwtauth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts the raw token. Clients send it as "Authorization: Bearer",
// in a "token" or "x-access-token" header, or, for websocket handshakes where browsers
// cannot set headers, as the "token" query parameter.
func TokenFromRequest(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		scheme, token, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return auth
	}
	for _, header := range []string{"token", "x-access-token"} {
		if token := strings.TrimSpace(r.Header.Get(header)); token != "" {
			return strings.TrimPrefix(token, "Bearer ")
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
