package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/handler"
    "github.com/iliyamo/photoshare-api/internal/middleware"
    "github.com/iliyamo/photoshare-api/internal/model"
)

// RegisterUsers registers account and profile endpoints under /v1/users.
// Listing users and changing roles is reserved for admins.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, i *handler.ImageHandler, requireAuth, limit, cache echo.MiddlewareFunc) {
    adminOnly := middleware.RequireRole(model.RoleAdmin)

    // Public: a user's uploads.
    e.GET("/v1/users/:username/images", i.ListByUser, limit, cache)

    g := e.Group("/v1/users", limit, requireAuth)
    g.GET("/me", u.Me)
    g.PATCH("/avatar", u.Avatar)
    g.PUT("/password", u.ChangePassword)
    g.GET("", u.List, adminOnly)
    g.PATCH("/role", u.ChangeRole, adminOnly)
    g.GET("/:username", u.Profile)
}
