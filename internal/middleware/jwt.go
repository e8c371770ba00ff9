package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/photoshare-api/internal/logger"
    "github.com/iliyamo/photoshare-api/internal/model"
    "github.com/iliyamo/photoshare-api/internal/service"
)

// IdentityResolver turns an access token into a user.
// *service.Authenticator satisfies it.
type IdentityResolver interface {
    Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

// Authenticate returns an Echo middleware that validates a Bearer access
// token and stores the resolved user in the request context, where
// handlers read it with CurrentUser.  Missing, malformed, expired and
// wrong-purpose tokens, as well as tokens whose user no longer exists,
// are answered with 401.
func Authenticate(auth IdentityResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := BearerToken(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            u, err := auth.Authenticate(c.Request().Context(), raw)
            if err != nil {
                switch {
                case errors.Is(err, service.ErrInvalidToken):
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                case errors.Is(err, service.ErrUnauthorized):
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
                }
                logger.Log.Error("authenticate failed", "error", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            c.Set(userKey, u)
            return next(c)
        }
    }
}
