package config // package config loads application configuration from environment variables

import (
    "errors"  // errors joins every missing or malformed variable into one report
    "fmt"     // fmt formats error messages
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time holds token and cache lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required variables are read with must(); the
// others fall back to defaults through the env* helpers in ratelimit.go.
type Config struct {
    Env     string // application environment (e.g. "dev", "prod")
    Port    string // HTTP port to listen on
    HostURL string // public base URL used in confirmation links

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTSecret    string        // secret used to sign JWTs
    JWTAlgorithm string        // HS256, HS384 or HS512
    AccessTTL    time.Duration // access token lifetime
    RefreshTTL   time.Duration // refresh token lifetime
    EmailTTL     time.Duration // email confirmation token lifetime
    BcryptCost   int           // bcrypt cost for password hashing

    RequireConfirmedLogin bool // reject logins of unconfirmed users

    SessionCacheTTL    time.Duration // lifetime of cached users in Redis
    SessionCachePrefix string        // Redis key prefix of cached users

    AMQPURL string // RabbitMQ URL; empty delivers signup events in-process

    SMTPHost     string        // SMTP server host; empty disables mail
    SMTPPort     int           // SMTP server port
    SMTPUsername string        // SMTP login
    SMTPPassword string        // SMTP password
    SMTPSSL      bool          // implicit TLS instead of STARTTLS
    SMTPTimeout  time.Duration // dial and send timeout
    MailFrom     string        // sender address
    MailFromName string        // sender display name

    CloudinaryName   string // Cloudinary cloud name
    CloudinaryKey    string // Cloudinary API key
    CloudinarySecret string // Cloudinary API secret
    CloudinaryFolder string // folder every asset is stored under

    SentryDSN string // Sentry DSN; empty disables error reporting
    LogLevel  string // debug, info, warn or error
    LogJSON   bool   // emit JSON logs instead of text
}

// Load reads configuration values from environment variables and returns a
// Config.  Every missing required variable and every malformed number is
// collected into the returned error.
func Load() (Config, error) {
    var errs []error
    required := func(key string) string {
        v, err := must(key)
        if err != nil {
            errs = append(errs, err)
        }
        return v
    }
    positive := func(key string, d int) int {
        n, err := positiveInt(key, d)
        if err != nil {
            errs = append(errs, err)
        }
        return n
    }

    cfg := Config{
        Env:     envStr("APP_ENV", "dev"),
        Port:    envStr("APP_PORT", "8080"),
        HostURL: envStr("APP_HOST_URL", "http://localhost:8080"),

        DBUser: required("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: required("DB_HOST"),
        DBPort: envStr("DB_PORT", "3306"),
        DBName: required("DB_NAME"),

        JWTSecret:    required("JWT_SECRET"),
        JWTAlgorithm: envStr("JWT_ALGORITHM", "HS256"),
        AccessTTL:    time.Duration(positive("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
        RefreshTTL:   time.Duration(positive("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
        EmailTTL:     time.Duration(positive("EMAIL_TOKEN_TTL_HOURS", 24)) * time.Hour,
        BcryptCost:   positive("BCRYPT_COST", 10),

        RequireConfirmedLogin: envBool("AUTH_REQUIRE_CONFIRMED", true),

        SessionCacheTTL:    envDur("SESSION_CACHE_TTL", 900*time.Second),
        SessionCachePrefix: envStr("SESSION_CACHE_PREFIX", "user"),

        AMQPURL: firstEnv("RABBITMQ_URL", "AMQP_URL"),

        SMTPHost:     os.Getenv("SMTP_HOST"),
        SMTPPort:     positive("SMTP_PORT", 465),
        SMTPUsername: os.Getenv("SMTP_USERNAME"),
        SMTPPassword: os.Getenv("SMTP_PASSWORD"),
        SMTPSSL:      envBool("SMTP_SSL", true),
        SMTPTimeout:  envDur("SMTP_TIMEOUT", 10*time.Second),
        MailFrom:     envStr("MAIL_FROM", "noreply@localhost"),
        MailFromName: envStr("MAIL_FROM_NAME", "Photoshare"),

        CloudinaryName:   os.Getenv("CLOUDINARY_NAME"),
        CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
        CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
        CloudinaryFolder: envStr("CLOUDINARY_FOLDER", "photoshare"),

        SentryDSN: os.Getenv("SENTRY_DSN"),
        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogJSON:   envBool("LOG_JSON", false),
    }
    if cfg.SessionCacheTTL <= 0 {
        errs = append(errs, fmt.Errorf("SESSION_CACHE_TTL must be positive"))
    }
    return cfg, errors.Join(errs...)
}

// must retrieves the value of a required environment variable.  An unset
// or empty variable is an error.
func must(key string) (string, error) {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        return "", fmt.Errorf("missing required env var: %s", key)
    }
    return v, nil
}

// positiveInt reads an optional integer that must be greater than zero
// when set.
func positiveInt(key string, def int) (int, error) {
    s := os.Getenv(key)
    if s == "" {
        return def, nil
    }
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        return def, fmt.Errorf("invalid positive int for %s: %q", key, s)
    }
    return n, nil
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
    for _, k := range keys {
        if v := os.Getenv(k); v != "" {
            return v
        }
    }
    return ""
}
