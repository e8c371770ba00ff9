package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/model"
    "github.com/iliyamo/photoshare-api/internal/service"
)

// UserLookup resolves public profiles.  *repository.UserRepo satisfies it.
type UserLookup interface {
    FindByUsername(ctx context.Context, username string) (model.User, error)
}

// ImageCounter counts uploads per user.  *repository.ImageRepo satisfies it.
type ImageCounter interface {
    CountByUser(ctx context.Context, userID uint64) (int, error)
}

// UserHandler serves profile and account endpoints.
type UserHandler struct {
    Auth   *service.Authenticator
    Images *service.ImageService
    Users  UserLookup
    Counts ImageCounter
}

func NewUserHandler(auth *service.Authenticator, images *service.ImageService, users UserLookup, counts ImageCounter) *UserHandler {
    return &UserHandler{Auth: auth, Images: images, Users: users, Counts: counts}
}

type passwordReq struct {
    OldPassword string `json:"old_password" validate:"required"`
    NewPassword string `json:"new_password" validate:"required,min=6,max=72,nefield=OldPassword"`
}

type roleReq struct {
    TargetEmail string `json:"target_email" validate:"required,email"`
    Role        string `json:"role" validate:"required"`
}

// Profile is the public view of a user.
type Profile struct {
    Username    string     `json:"username"`
    Avatar      string     `json:"avatar,omitempty"`
    Role        model.Role `json:"role"`
    CreatedAt   time.Time  `json:"created_at"`
    ImagesCount int        `json:"images_count"`
}

// Me handles GET /v1/users/me.
func (h *UserHandler) Me(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    return c.JSON(http.StatusOK, u)
}

// Avatar handles PATCH /v1/users/avatar with a multipart "file" field.
func (h *UserHandler) Avatar(c echo.Context) error {
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

    url, err := h.Images.UploadAvatar(ctx, u, f)
    if err != nil {
        return respondError(c, err)
    }
    updated, err := h.Auth.UpdateAvatar(ctx, u.Email, url)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, updated)
}

// ChangePassword handles PUT /v1/users/password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    var req passwordReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.ChangePassword(ctx, u.Email, req.OldPassword, req.NewPassword); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Profile handles GET /v1/users/:username.
func (h *UserHandler) Profile(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Users.FindByUsername(ctx, c.Param("username"))
    if err != nil {
        return respondError(c, err)
    }
    n, err := h.Counts.CountByUser(ctx, u.ID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, Profile{
        Username:    u.Username,
        Avatar:      u.Avatar,
        Role:        u.Role,
        CreatedAt:   u.CreatedAt,
        ImagesCount: n,
    })
}

// List handles GET /v1/users (admin).
func (h *UserHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    users, err := h.Auth.ListUsers(ctx)
    if err != nil {
        return respondError(c, err)
    }
    if users == nil {
        users = []model.User{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": users})
}

// ChangeRole handles PATCH /v1/users/role.  The caller is the acting admin.
func (h *UserHandler) ChangeRole(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    var req roleReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    role, err := model.ParseRole(req.Role)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.ChangeRole(ctx, u.Email, req.TargetEmail, role); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "role updated", "email": req.TargetEmail, "role": role})
}
