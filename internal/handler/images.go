package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/service"
)

// ImageHandler serves image, transformation and QR code endpoints.
type ImageHandler struct {
    Images *service.ImageService
    Users  UserLookup
}

func NewImageHandler(images *service.ImageService, users UserLookup) *ImageHandler {
    return &ImageHandler{Images: images, Users: users}
}

type imageUpdateReq struct {
    Description string `json:"description" form:"description"`
    Tags        string `json:"tags" form:"tags"`
}

type transformURLReq struct {
    PublicID string `query:"public_id" validate:"required"`
    service.Transform
}

// List handles GET /v1/images?offset=&limit=.
func (h *ImageHandler) List(c echo.Context) error {
    offset, limit := pagination(c)
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    items, err := h.Images.List(ctx, offset, limit)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "offset": offset, "limit": limit})
}

// Get handles GET /v1/images/:id.
func (h *ImageHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    img, err := h.Images.Get(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, img)
}

// ListByUser handles GET /v1/users/:username/images.
func (h *ImageHandler) ListByUser(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Users.FindByUsername(ctx, c.Param("username"))
    if err != nil {
        return respondError(c, err)
    }
    items, err := h.Images.ListByUser(ctx, u.ID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/images (multipart: file, description, tags).
func (h *ImageHandler) Create(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
    }
    f, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
    }
    defer f.Close()

    ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
    defer cancel()

    img, err := h.Images.Upload(ctx, u, f, c.FormValue("description"), c.FormValue("tags"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, img)
}

// Update handles PUT /v1/images/:id (owner only).
func (h *ImageHandler) Update(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req imageUpdateReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    img, err := h.Images.Update(ctx, u, id, req.Description, req.Tags)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, img)
}

// Delete handles DELETE /v1/images/:id (owner or admin).
func (h *ImageHandler) Delete(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
    defer cancel()

    if err := h.Images.Delete(ctx, u, id); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Transform handles POST /v1/images/:id/transform (owner only).
func (h *ImageHandler) Transform(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var t service.Transform
    if ok, err := bindAndValidate(c, &t); !ok {
        return err
    }
    if t.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no transformation requested"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    img, err := h.Images.Transform(ctx, u, id, t)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, img)
}

// TransformURL handles GET /v1/transform?public_id=...&width=...; nothing
// is stored.
func (h *ImageHandler) TransformURL(c echo.Context) error {
    var req transformURLReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    url, err := h.Images.TransformURL(req.PublicID, req.Transform)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// QRCode handles POST /v1/images/:id/qrcode (owner only).
func (h *ImageHandler) QRCode(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
    defer cancel()

    img, err := h.Images.QRCode(ctx, u, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, img)
}
