package handler // handler defines http handlers

import (
    "context"  // context bounds each request's store calls
    "errors"   // errors matches sentinel values from the service layer
    "net/http" // http provides status code constants
    "regexp"   // regexp backs the cldtoken validation tag
    "strconv"  // strconv converts strings to numeric types
    "time"     // time sets the per-request timeout

    "github.com/go-playground/validator/v10" // validator checks request DTOs
    "github.com/labstack/echo/v4"            // echo defines request context types

    "github.com/iliyamo/photoshare-api/internal/logger"     // logger reports unexpected failures
    "github.com/iliyamo/photoshare-api/internal/middleware" // middleware stores the authenticated user
    "github.com/iliyamo/photoshare-api/internal/model"      // model holds the user type
    "github.com/iliyamo/photoshare-api/internal/repository" // repository sentinels for tags and comments
    "github.com/iliyamo/photoshare-api/internal/service"    // service sentinels for auth and images
)

// requestTimeout bounds the store and hosting calls of a single request.
const requestTimeout = 5 * time.Second

// uploadTimeout is used for handlers that push files to the media host.
const uploadTimeout = 30 * time.Second

// Default and maximum page size for list endpoints.
const (
    defaultLimit = 20
    maxLimit     = 100
)

var cldToken = regexp.MustCompile(`^[A-Za-z0-9_:]+$`)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
    v *validator.Validate
}

// NewValidator registers the custom tags used by the request DTOs.
func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    _ = v.RegisterValidation("cldtoken", func(fl validator.FieldLevel) bool {
        return cldToken.MatchString(fl.Field().String())
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
    return cv.v.Struct(i)
}

// bindAndValidate binds the request into dst and runs validation.  It
// writes the 400 response itself and reports whether the handler may go on.
func bindAndValidate(c echo.Context, dst any) (bool, error) {
    if err := c.Bind(dst); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(dst); err != nil {
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) && len(verrs) > 0 {
            fe := verrs[0]
            return false, c.JSON(http.StatusBadRequest, echo.Map{
                "error": "invalid " + fe.Field(),
                "rule":  fe.Tag(),
            })
        }
        return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    return true, nil
}

// respondError maps service and repository failures to HTTP responses.
// Anything unrecognised becomes a logged 500.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrInvalidCredentials):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    case errors.Is(err, service.ErrInvalidToken):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
    case errors.Is(err, service.ErrStaleToken):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token was superseded"})
    case errors.Is(err, service.ErrUnauthorized):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case errors.Is(err, service.ErrForbidden), errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrNotFound),
        errors.Is(err, repository.ErrImageNotFound),
        errors.Is(err, repository.ErrTagNotFound),
        errors.Is(err, repository.ErrCommentNotFound),
        errors.Is(err, repository.ErrUserNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, service.ErrConflict), errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
    case errors.Is(err, service.ErrInvalidRole),
        errors.Is(err, service.ErrTooManyTags),
        errors.Is(err, service.ErrTagTooLong),
        errors.Is(err, service.ErrDescriptionLength),
        errors.Is(err, service.ErrCommentLength),
        errors.Is(err, service.ErrUnsupportedImage):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
    }
    logger.Log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(c echo.Context) (model.User, bool, error) {
    u, ok := middleware.CurrentUser(c)
    if !ok {
        return model.User{}, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return u, true, nil
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// pagination reads offset and limit query parameters and clamps them.
func pagination(c echo.Context) (offset, limit int) {
    offset, _ = strconv.Atoi(c.QueryParam("offset"))
    limit, _ = strconv.Atoi(c.QueryParam("limit"))
    if offset < 0 {
        offset = 0
    }
    if limit <= 0 {
        limit = defaultLimit
    }
    if limit > maxLimit {
        limit = maxLimit
    }
    return offset, limit
}
