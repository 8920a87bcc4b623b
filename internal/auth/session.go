// Package auth resolves inbound requests to the end-user identity issued by
// the auth provider.
package auth

import (
	"strings"

	"github.com/Growthfyi/squeak/pkg/jwtutil"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie the widget sets after sign-in.
const SessionCookie = "squeak_session"

// Resolver maps a request to an authenticated identity, or to nil when the
// request carries no valid session. A missing session is a normal outcome, not
// an error.
type Resolver struct {
	jwt *jwtutil.JWTUtil
}

// NewResolver creates a session resolver backed by the given token validator
func NewResolver(jwt *jwtutil.JWTUtil) *Resolver {
	return &Resolver{jwt: jwt}
}

// Resolve extracts the session token from the Authorization header or the
// session cookie and validates it. Returns nil for absent or invalid tokens.
func (r *Resolver) Resolve(c echo.Context) *jwtutil.UserClaims {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil
	}

	claims, err := r.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// ValidateToken validates a raw token string, for flows that receive the token
// in the request body rather than a header.
func (r *Resolver) ValidateToken(token string) (*jwtutil.UserClaims, error) {
	return r.jwt.ValidateToken(token)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
