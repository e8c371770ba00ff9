package handler // declare the package name; contains HTTP handlers

import (
    "context"      // context bounds the readiness probes
    "database/sql" // sql is pinged for readiness
    "net/http"     // net/http provides status codes and response helpers
    "time"         // time sets the probe timeout

    "github.com/labstack/echo/v4"   // echo is the web framework used for this project
    "github.com/redis/go-redis/v9" // redis is pinged when configured
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Readiness reports whether the database, and Redis when configured, answer
// a ping.  Redis being down degrades the service but does not fail it.
func Readiness(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        status := echo.Map{"database": "ok", "redis": "disabled"}
        code := http.StatusOK
        if err := db.PingContext(ctx); err != nil {
            status["database"] = "down"
            code = http.StatusServiceUnavailable
        }
        if rdb != nil {
            status["redis"] = "ok"
            if err := rdb.Ping(ctx).Err(); err != nil {
                status["redis"] = "down"
            }
        }
        return c.JSON(code, status)
    }
}
