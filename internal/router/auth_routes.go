package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/handler"
)

// RegisterAuth registers the /v1/auth endpoints.  Signup, login, refresh
// and confirmation work without a session; logout needs an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, requireAuth, limit echo.MiddlewareFunc) {
    g := e.Group("/v1/auth", limit)
    g.POST("/signup", a.Signup)
    g.POST("/login", a.Login)
    // The refresh token travels either as Bearer credential or in the body.
    g.GET("/refresh_token", a.RefreshFromHeader)
    g.POST("/refresh_token", a.RefreshFromBody)
    g.POST("/logout", a.Logout, requireAuth)
    g.GET("/confirmed_email/:token", a.ConfirmEmail)
    g.POST("/request_email", a.RequestEmail)
}
