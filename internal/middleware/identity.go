package middleware

// identity.go defines helpers shared across middleware files and handlers.
// Authenticate stores the resolved user in the Echo context under userKey;
// CurrentUser reads it back.

import (
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/model"
)

const userKey = "user"

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (model.User, bool) {
    u, ok := c.Get(userKey).(model.User)
    return u, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.  The scheme is matched case-insensitively.
func BearerToken(c echo.Context) (string, bool) {
    h := c.Request().Header.Get(echo.HeaderAuthorization)
    scheme, raw, found := strings.Cut(h, " ")
    if !found || !strings.EqualFold(scheme, "Bearer") {
        return "", false
    }
    raw = strings.TrimSpace(raw)
    return raw, raw != ""
}

// userID identifies the caller for rate limiting.  It returns "guest"
// when no user is authenticated.
func userID(c echo.Context) string {
    if u, ok := CurrentUser(c); ok {
        return u.Email
    }
    return "guest"
}
