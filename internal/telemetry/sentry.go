// Package telemetry reports unexpected failures to Sentry.
package telemetry

import (
    "time"

    "github.com/getsentry/sentry-go"

    "github.com/iliyamo/photoshare-api/internal/logger"
)

// Sentry wraps the global Sentry client.  With an empty DSN every call is
// a no-op, so development setups need no account.
type Sentry struct {
    enabled bool
}

// InitSentry configures the Sentry client for dsn and env.
func InitSentry(dsn, env string) (*Sentry, error) {
    if dsn == "" {
        logger.Log.Info("sentry disabled")
        return &Sentry{}, nil
    }
    if env == "" {
        env = "development"
    }
    err := sentry.Init(sentry.ClientOptions{
        Dsn:              dsn,
        Environment:      env,
        Debug:            env == "development",
        SampleRate:       1.0,
        AttachStacktrace: true,
    })
    if err != nil {
        return nil, err
    }
    return &Sentry{enabled: true}, nil
}

// Enabled reports whether events are actually sent.
func (s *Sentry) Enabled() bool { return s != nil && s.enabled }

// CaptureException sends err to Sentry.
func (s *Sentry) CaptureException(err error) {
    if err == nil || !s.Enabled() {
        return
    }
    sentry.CaptureException(err)
}

// Close flushes pending events.
func (s *Sentry) Close() {
    if !s.Enabled() {
        return
    }
    sentry.Flush(2 * time.Second)
}
