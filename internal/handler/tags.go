package handler

import (
    "context"
    "net/http"
    "strings"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/model"
    "github.com/iliyamo/photoshare-api/internal/service"
)

// TagStore is the persistence used by TagHandler.  *repository.TagRepo
// satisfies it.
type TagStore interface {
    List(ctx context.Context, offset, limit int) ([]model.Tag, error)
    GetByID(ctx context.Context, id uint64) (model.Tag, error)
    Create(ctx context.Context, name string) (model.Tag, error)
    Rename(ctx context.Context, id uint64, name string) (model.Tag, error)
    Delete(ctx context.Context, id uint64) (model.Tag, error)
}

type TagHandler struct {
    Tags TagStore
}

func NewTagHandler(tags TagStore) *TagHandler { return &TagHandler{Tags: tags} }

type tagReq struct {
    Name string `json:"name" validate:"required"`
}

func tagName(raw string) (string, error) {
    name := strings.TrimSpace(raw)
    if name == "" || utf8.RuneCountInString(name) > service.MaxTagLength {
        return "", service.ErrTagTooLong
    }
    return name, nil
}

// List handles GET /v1/tags?offset=&limit=.
func (h *TagHandler) List(c echo.Context) error {
    offset, limit := pagination(c)
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    items, err := h.Tags.List(ctx, offset, limit)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "offset": offset, "limit": limit})
}

// Get handles GET /v1/tags/:id.
func (h *TagHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    t, err := h.Tags.GetByID(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}

// Create handles POST /v1/tags.
func (h *TagHandler) Create(c echo.Context) error {
    var req tagReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    name, err := tagName(req.Name)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    t, err := h.Tags.Create(ctx, name)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, t)
}

// Update handles PUT /v1/tags/:id.
func (h *TagHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req tagReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    name, err := tagName(req.Name)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    t, err := h.Tags.Rename(ctx, id, name)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tags/:id and echoes the removed tag.
func (h *TagHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    t, err := h.Tags.Delete(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, t)
}
