package utils // package utils provides helpers for token signing and password hashing

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"
)

// Purpose is the value of the "scope" claim.  A token minted for one
// purpose is never accepted where another purpose is expected.
type Purpose string

const (
    PurposeAccess  Purpose = "access_token"
    PurposeRefresh Purpose = "refresh_token"
    PurposeEmail   Purpose = "email_token"
)

// Default lifetimes used when the configuration does not override them.
const (
    DefaultAccessTTL  = 15 * time.Minute
    DefaultRefreshTTL = 7 * 24 * time.Hour
    DefaultEmailTTL   = 24 * time.Hour
)

// ErrInvalidToken covers every verification failure: bad signature,
// unexpected algorithm, expiry, missing subject and purpose mismatch.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by every token.
type Claims struct {
    Scope Purpose `json:"scope"`
    jwt.RegisteredClaims
}

// Token represents a signed JWT along with its expiry.  Raw is what the
// client receives; ExpiresAt is the UTC expiration time.
type Token struct {
    Raw       string
    ExpiresAt time.Time
}

// TokenCodec signs and verifies purpose-tagged tokens with one
// process-wide secret and HMAC algorithm.
type TokenCodec struct {
    secret []byte
    method jwt.SigningMethod
    now    func() time.Time
}

// NewTokenCodec builds a codec for the given secret and algorithm name
// (HS256, HS384 or HS512; empty means HS256).
func NewTokenCodec(secret, alg string) (*TokenCodec, error) {
    if secret == "" {
        return nil, errors.New("jwt secret is empty")
    }
    var method jwt.SigningMethod
    switch strings.ToUpper(strings.TrimSpace(alg)) {
    case "", "HS256":
        method = jwt.SigningMethodHS256
    case "HS384":
        method = jwt.SigningMethodHS384
    case "HS512":
        method = jwt.SigningMethodHS512
    default:
        return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
    }
    return &TokenCodec{secret: []byte(secret), method: method, now: time.Now}, nil
}

// Issue signs a token for subject with the given purpose that expires
// ttl from now.  A non-positive ttl yields an already expired token.
// Every token carries a random jti, so two tokens issued within the same
// second never compare equal.
func (c *TokenCodec) Issue(subject string, purpose Purpose, ttl time.Duration) (Token, error) {
    now := c.now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        Scope: purpose,
        RegisteredClaims: jwt.RegisteredClaims{
            ID:        uuid.NewString(),
            Subject:   subject,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
    if err != nil {
        return Token{}, err
    }
    return Token{Raw: signed, ExpiresAt: exp}, nil
}

// Verify checks raw and returns its subject when the signature is valid,
// the token has not expired and its purpose equals expected.
func (c *TokenCodec) Verify(raw string, expected Purpose) (string, error) {
    if raw == "" {
        return "", ErrInvalidToken
    }
    parser := jwt.NewParser(
        jwt.WithValidMethods([]string{c.method.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(c.now),
    )
    claims := &Claims{}
    tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
        }
        return c.secret, nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    if claims.Scope != expected || claims.Subject == "" {
        return "", ErrInvalidToken
    }
    return claims.Subject, nil
}
