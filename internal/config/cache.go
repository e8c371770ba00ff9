package config

import (
    "net/http"
    "strings"
    "time"
)

// CacheConfig drives the Redis response cache in front of the public
// image, comment, tag and user-upload listings.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool // only GET and HEAD are ever honoured
    TTL          time.Duration   // how stale a listing may get
    KeyStrategy  string          // route, route_query or method_route_query
    Prefix       string          // Redis key namespace
    MaxBodyBytes int             // larger responses are passed through uncached
}

// LoadCacheConfig reads the CACHE_* variables.  Unsafe methods listed in
// CACHE_METHODS are dropped, a non-positive TTL falls back to 30s and a
// non-positive body limit to 1 MiB.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", http.MethodGet)),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    if cfg.MaxBodyBytes <= 0 {
        cfg.MaxBodyBytes = 1 << 20
    }
    return cfg
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        switch p = strings.ToUpper(strings.TrimSpace(p)); p {
        case http.MethodGet, http.MethodHead:
            m[p] = true
        }
    }
    return m
}
