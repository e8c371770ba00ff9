package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec("test-secret", "HS256")
	require.NoError(t, err)
	return c
}

func TestNewTokenCodec(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := NewTokenCodec("", "HS256")
		assert.Error(t, err)
	})
	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := NewTokenCodec("s", "RS256")
		assert.Error(t, err)
	})
	t.Run("default algorithm", func(t *testing.T) {
		c, err := NewTokenCodec("s", "")
		require.NoError(t, err)
		assert.Equal(t, "HS256", c.method.Alg())
	})
}

func TestTokenCodec_IssueVerify(t *testing.T) {
	c := newTestCodec(t)
	purposes := []Purpose{PurposeAccess, PurposeRefresh, PurposeEmail}

	for _, p := range purposes {
		t.Run(string(p), func(t *testing.T) {
			tok, err := c.Issue("alice@example.com", p, time.Minute)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(time.Minute), tok.ExpiresAt, 2*time.Second)

			sub, err := c.Verify(tok.Raw, p)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", sub)
		})
	}
}

func TestTokenCodec_CrossPurposeRejected(t *testing.T) {
	c := newTestCodec(t)
	purposes := []Purpose{PurposeAccess, PurposeRefresh, PurposeEmail}
	subjects := []string{"a@b.c", "bob@example.com", "x"}
	ttls := []time.Duration{time.Second, time.Hour, 7 * 24 * time.Hour}

	for _, issued := range purposes {
		for _, expected := range purposes {
			if issued == expected {
				continue
			}
			for i, sub := range subjects {
				tok, err := c.Issue(sub, issued, ttls[i])
				require.NoError(t, err)
				_, err = c.Verify(tok.Raw, expected)
				assert.ErrorIs(t, err, ErrInvalidToken, "issued=%s expected=%s", issued, expected)
			}
		}
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	c := newTestCodec(t)
	for _, ttl := range []time.Duration{-1, -time.Second, -time.Hour} {
		tok, err := c.Issue("alice@example.com", PurposeAccess, ttl)
		require.NoError(t, err)
		_, err = c.Verify(tok.Raw, PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenCodec_Tampered(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewTokenCodec("other-secret", "HS256")
	require.NoError(t, err)

	tok, err := other.Issue("alice@example.com", PurposeAccess, time.Minute)
	require.NoError(t, err)

	t.Run("foreign secret", func(t *testing.T) {
		_, err := c.Verify(tok.Raw, PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := c.Verify("not.a.token", PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := c.Verify("", PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("algorithm none", func(t *testing.T) {
		claims := Claims{Scope: PurposeAccess, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = c.Verify(raw, PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("different hmac size", func(t *testing.T) {
		hs512, err := NewTokenCodec("test-secret", "HS512")
		require.NoError(t, err)
		tok, err := hs512.Issue("alice@example.com", PurposeAccess, time.Minute)
		require.NoError(t, err)
		_, err = c.Verify(tok.Raw, PurposeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenCodec_MissingSubject(t *testing.T) {
	c := newTestCodec(t)
	tok, err := c.Issue("", PurposeAccess, time.Minute)
	require.NoError(t, err)
	_, err = c.Verify(tok.Raw, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 3, len(strings.Split(tok.Raw, ".")))
}

func TestTokenCodec_UniquePerIssue(t *testing.T) {
	c := newTestCodec(t)
	a, err := c.Issue("alice@example.com", PurposeRefresh, time.Hour)
	require.NoError(t, err)
	b, err := c.Issue("alice@example.com", PurposeRefresh, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Raw, b.Raw)
}
