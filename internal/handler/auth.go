package handler

import (
    "context"  // provides context with cancellation for store calls
    "errors"   // errors matches service sentinels
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // token expiry in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/photoshare-api/internal/logger"     // logs notification failures
    "github.com/iliyamo/photoshare-api/internal/middleware" // bearer extraction
    "github.com/iliyamo/photoshare-api/internal/queue"      // signup events
    "github.com/iliyamo/photoshare-api/internal/service"    // authentication service
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth     *service.Authenticator
    Notifier queue.Notifier
    HostURL  string
}

func NewAuthHandler(auth *service.Authenticator, notifier queue.Notifier, hostURL string) *AuthHandler {
    return &AuthHandler{Auth: auth, Notifier: notifier, HostURL: hostURL}
}

// ----- DTOs -----

type signupReq struct {
    Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
    Email    string `json:"email" form:"email" validate:"required,email,max=150"`
    Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
    Email    string `json:"email" form:"email" validate:"required,email"`
    Password string `json:"password" form:"password" validate:"required"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
}
type emailReq struct {
    Email string `json:"email" form:"email" validate:"required,email"`
}

type tokenResp struct {
    AccessToken      string    `json:"access_token"`
    RefreshToken     string    `json:"refresh_token"`
    TokenType        string    `json:"token_type"`
    AccessExpiresAt  time.Time `json:"access_expires_at"`
    RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func newTokenResp(p service.TokenPair) tokenResp {
    return tokenResp{
        AccessToken:      p.Access.Raw,
        RefreshToken:     p.Refresh.Raw,
        TokenType:        "bearer",
        AccessExpiresAt:  p.Access.ExpiresAt,
        RefreshExpiresAt: p.Refresh.ExpiresAt,
    }
}

// Signup: create an unconfirmed user and queue the confirmation email.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Auth.Signup(ctx, req.Username, strings.TrimSpace(req.Email), req.Password)
    if err != nil {
        if errors.Is(err, service.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
        }
        return respondError(c, err)
    }
    h.notify(ctx, u.Email, u.Username)

    return c.JSON(http.StatusCreated, echo.Map{
        "user":   u,
        "detail": "User successfully created. Check your email for confirmation.",
    })
}

func (h *AuthHandler) notify(ctx context.Context, email, username string) {
    if h.Notifier == nil {
        return
    }
    ev := queue.SignupEvent{Email: email, Username: username, HostURL: h.HostURL}
    if err := h.Notifier.NotifySignup(ctx, ev); err != nil {
        logger.Log.Error("signup notification not queued", "email", email, "error", err)
    }
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    pair, err := h.Auth.Login(ctx, strings.TrimSpace(req.Email), req.Password)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, newTokenResp(pair))
}

// RefreshFromHeader: exchange the refresh token sent as Bearer credential.
func (h *AuthHandler) RefreshFromHeader(c echo.Context) error {
    raw, ok := middleware.BearerToken(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
    }
    return h.refresh(c, raw)
}

// RefreshFromBody: exchange the refresh token sent in the request body.
func (h *AuthHandler) RefreshFromBody(c echo.Context) error {
    var req refreshReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    return h.refresh(c, strings.TrimSpace(req.RefreshToken))
}

func (h *AuthHandler) refresh(c echo.Context, raw string) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    pair, err := h.Auth.Refresh(ctx, raw)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, newTokenResp(pair))
}

// Logout: forget the stored refresh token of the current user (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
    u, ok, err := currentUser(c)
    if !ok {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.Logout(ctx, u.Email); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ConfirmEmail: mark the token's owner as confirmed.  Repeating the call
// with the same token succeeds.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.ConfirmEmail(ctx, c.Param("token")); err != nil {
        if errors.Is(err, service.ErrInvalidToken) {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid token for email verification"})
        }
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

// RequestEmail: send the confirmation email again.  The answer does not
// reveal whether the address is registered.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
    var req emailReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    u, err := h.Auth.PendingConfirmation(ctx, strings.TrimSpace(req.Email))
    switch {
    case errors.Is(err, service.ErrConflict):
        return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
    case errors.Is(err, service.ErrNotFound):
    case err != nil:
        return respondError(c, err)
    default:
        h.notify(ctx, u.Email, u.Username)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}
