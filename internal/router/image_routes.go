package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/handler"
    "github.com/iliyamo/photoshare-api/internal/middleware"
    "github.com/iliyamo/photoshare-api/internal/model"
)

// RegisterImages registers image, transformation and comment endpoints.
// Reads are public and response-cached; writes need an access token and
// ownership is checked by the service.
func RegisterImages(e *echo.Echo, i *handler.ImageHandler, c *handler.CommentHandler, requireAuth, limit, cache echo.MiddlewareFunc) {
    staff := middleware.RequireRole(model.RoleAdmin, model.RoleModerator)

    pub := e.Group("/v1", limit)
    pub.GET("/images", i.List, cache)
    pub.GET("/images/:id", i.Get, cache)
    pub.GET("/images/:id/comments", c.List, cache)
    pub.GET("/transform", i.TransformURL)

    g := e.Group("/v1/images", limit, requireAuth)
    g.POST("", i.Create)
    g.PUT("/:id", i.Update)
    g.DELETE("/:id", i.Delete)
    g.POST("/:id/transform", i.Transform)
    g.POST("/:id/qrcode", i.QRCode)

    g.POST("/:id/comments", c.Create)
    g.PATCH("/:id/comments/:comment_id", c.Update)
    g.DELETE("/:id/comments/:comment_id", c.Delete, staff)
}
