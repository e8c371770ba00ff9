package middleware

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "http_requests_total",
            Help: "Total number of HTTP requests",
        },
        []string{"method", "path", "status"},
    )

    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "http_request_duration_seconds",
            Help:    "HTTP request duration in seconds",
            Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
        },
        []string{"method", "path"},
    )

    httpRequestsInFlight = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "http_requests_in_flight",
            Help: "Number of HTTP requests currently being processed",
        },
    )
)

// Metrics records Prometheus request metrics.  The route pattern, not the
// raw path, is used as label to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            httpRequestsInFlight.Inc()
            defer httpRequestsInFlight.Dec()

            err := next(c)

            status := c.Response().Status
            if err != nil {
                status = http.StatusInternalServerError
                var he *echo.HTTPError
                if errors.As(err, &he) {
                    status = he.Code
                }
            }
            path := c.Path()
            if path == "" {
                path = "unmatched"
            }
            method := c.Request().Method
            httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
            httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
            return err
        }
    }
}
