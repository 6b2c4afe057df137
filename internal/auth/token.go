package auth

import (
	"net/http"
	"strings"
)

var tokenCookies = []string{"token", "jwt"}

// ExtractToken finds the raw credential on r. It checks, in order, the token
// query parameter, the Authorization header and the token/jwt cookies. An
// Authorization header without a Bearer scheme is taken verbatim.
func ExtractToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}

	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return h
	}

	for _, name := range tokenCookies {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
