package router // package router defines how HTTP routes are registered for the API

import (
    "database/sql"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/photoshare-api/internal/config"
    "github.com/iliyamo/photoshare-api/internal/handler"    // the handlers that implement each endpoint
    "github.com/iliyamo/photoshare-api/internal/logger"
    "github.com/iliyamo/photoshare-api/internal/middleware" // authentication, roles, caching and rate limiting
    "github.com/iliyamo/photoshare-api/internal/telemetry"
)

// Deps carries everything the router wires together.
type Deps struct {
    Auth     *handler.AuthHandler
    Users    *handler.UserHandler
    Images   *handler.ImageHandler
    Comments *handler.CommentHandler
    Tags     *handler.TagHandler

    // Resolver turns bearer access tokens into users.
    Resolver middleware.IdentityResolver

    DB    *sql.DB
    Redis *redis.Client // nil disables caching and rate limiting

    RateLimit config.RateLimitConfig
    Cache     config.CacheConfig
    Sentry    *telemetry.Sentry

    // BodyLimit caps request bodies, e.g. "10M".
    BodyLimit string
}

// New builds the Echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewValidator()
    e.HTTPErrorHandler = errorHandler(e, d.Sentry)

    bodyLimit := d.BodyLimit
    if bodyLimit == "" {
        bodyLimit = "10M"
    }

    // Recovered panics reach errorHandler as 500s and are reported there.
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(requestLogger())
    e.Use(middleware.Metrics())
    e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
        AllowOrigins: []string{"*"},
        AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
    }))
    e.Use(echomw.BodyLimit(bodyLimit))

    RegisterRoutes(e, d.DB, d.Redis)

    limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
    cache := middleware.NewRedisCache(d.Cache, d.Redis)
    requireAuth := middleware.Authenticate(d.Resolver)

    RegisterAuth(e, d.Auth, requireAuth, limit)
    RegisterUsers(e, d.Users, d.Images, requireAuth, limit, cache)
    RegisterImages(e, d.Images, d.Comments, requireAuth, limit, cache)
    RegisterTags(e, d.Tags, requireAuth, limit, cache)
    return e
}

// RegisterRoutes registers the probes and the metrics endpoint.  None of
// them require authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client) {
    e.GET("/healthz", handler.Health)
    if db != nil {
        e.GET("/readyz", handler.Readiness(db, rdb))
    }
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func requestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogStatus:    true,
        LogURI:       true,
        LogMethod:    true,
        LogLatency:   true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []any{
                "method", v.Method,
                "uri", v.URI,
                "status", v.Status,
                "latency", v.Latency,
                "request_id", v.RequestID,
            }
            if v.Error != nil {
                logger.Log.Error("request", append(attrs, "error", v.Error)...)
                return nil
            }
            logger.Log.Info("request", attrs...)
            return nil
        },
    })
}

// errorHandler reports errors that escaped the handlers to Sentry and
// answers in the same {"error": ...} shape the handlers use.
func errorHandler(e *echo.Echo, s *telemetry.Sentry) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        code := http.StatusInternalServerError
        msg := "internal error"
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
            if m, ok := he.Message.(string); ok {
                msg = m
            } else {
                msg = http.StatusText(code)
            }
        }
        if code >= http.StatusInternalServerError {
            s.CaptureException(err)
            logger.Log.Error("unhandled error", "path", c.Path(), "error", err)
        }
        if c.Request().Method == http.MethodHead {
            err = c.NoContent(code)
        } else {
            err = c.JSON(code, echo.Map{"error": msg})
        }
        if err != nil {
            e.Logger.Error(err)
        }
    }
}
