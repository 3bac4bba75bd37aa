package middleware

// identity.go holds the helpers that read the authenticated identity out
// of the Echo context for keying purposes (rate limiting).  Unlike the
// handlers, these never fail: unauthenticated requests key as "anon".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityKey returns a stable string for the current user, or "anon"
// when the request carries no valid token.
func identityKey(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
