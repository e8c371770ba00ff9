package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/model"
    "github.com/iliyamo/photoshare-api/internal/service"
)

// CommentStore is the persistence used by CommentHandler.
// *repository.CommentRepo satisfies it.
type CommentStore interface {
    ListByImage(ctx context.Context, imageID uint64) ([]model.Comment, error)
    GetByID(ctx context.Context, id uint64) (model.Comment, error)
    Create(ctx context.Context, imageID, userID uint64, text string) (model.Comment, error)
    Update(ctx context.Context, id, userID uint64, text string) (model.Comment, error)
    Delete(ctx context.Context, id uint64) error
}

// CommentHandler serves comments nested under an image.
type CommentHandler struct {
    Comments CommentStore
    Images   *service.ImageService
}

func NewCommentHandler(comments CommentStore, images *service.ImageService) *CommentHandler {
    return &CommentHandler{Comments: comments, Images: images}
}

type commentReq struct {
    Comment string `json:"comment" validate:"required"`
}

// List handles GET /v1/images/:id/comments.
func (h *CommentHandler) List(c echo.Context) error {
    imageID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if _, err := h.Images.Get(ctx, imageID); err != nil {
        return respondError(c, err)
    }
    items, err := h.Comments.ListByImage(ctx, imageID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/images/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    imageID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req commentReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    text, err := service.CleanComment(req.Comment)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if _, err := h.Images.Get(ctx, imageID); err != nil {
        return respondError(c, err)
    }
    cm, err := h.Comments.Create(ctx, imageID, u.ID, text)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, cm)
}

// Update handles PATCH /v1/images/:id/comments/:comment_id.  Only the
// author may edit; anyone else sees a 404.
func (h *CommentHandler) Update(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    imageID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    commentID, ok := parseID(c, "comment_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
    }
    var req commentReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    text, err := service.CleanComment(req.Comment)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.belongs(ctx, commentID, imageID); err != nil {
        return respondError(c, err)
    }
    cm, err := h.Comments.Update(ctx, commentID, u.ID, text)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, cm)
}

// Delete handles DELETE /v1/images/:id/comments/:comment_id.  The route
// is restricted to admins and moderators.
func (h *CommentHandler) Delete(c echo.Context) error {
    imageID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    commentID, ok := parseID(c, "comment_id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.belongs(ctx, commentID, imageID); err != nil {
        return respondError(c, err)
    }
    if err := h.Comments.Delete(ctx, commentID); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// belongs checks that the comment hangs off the image in the path.
func (h *CommentHandler) belongs(ctx context.Context, commentID, imageID uint64) error {
    cm, err := h.Comments.GetByID(ctx, commentID)
    if err != nil {
        return err
    }
    if cm.ImageID != imageID {
        return service.ErrNotFound
    }
    return nil
}
