package httpapi

import (
	"net/http"
	"regexp"
)

// loopbackOriginRe matches browser origins served from the local machine.
// Used only when no origin is configured, so `npm run dev` style frontends
// work without extra setup.
var loopbackOriginRe = regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)

// OriginAllower returns the allow decision fed into the CORS middleware.
// With a configured origin, only that exact value matches; otherwise the
// development fallback accepts loopback origins. A non-matching origin gets
// no CORS headers, which makes browsers withhold the response from script.
// This is advisory access control only, not authentication.
func OriginAllower(allowed string) func(r *http.Request, origin string) bool {
	if allowed != "" {
		return func(r *http.Request, origin string) bool {
			return origin == allowed
		}
	}
	return func(r *http.Request, origin string) bool {
		return loopbackOriginRe.MatchString(origin)
	}
}
