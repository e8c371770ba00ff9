package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/handler"
    "github.com/iliyamo/photoshare-api/internal/middleware"
    "github.com/iliyamo/photoshare-api/internal/model"
)

// RegisterTags registers /v1/tags.  Any user may create a tag; renaming
// and deleting is left to admins and moderators.
func RegisterTags(e *echo.Echo, t *handler.TagHandler, requireAuth, limit, cache echo.MiddlewareFunc) {
    staff := middleware.RequireRole(model.RoleAdmin, model.RoleModerator)

    pub := e.Group("/v1/tags", limit)
    pub.GET("", t.List, cache)
    pub.GET("/:id", t.Get, cache)

    g := e.Group("/v1/tags", limit, requireAuth)
    g.POST("", t.Create)
    g.PUT("/:id", t.Update, staff)
    g.DELETE("/:id", t.Delete, staff)
}
