package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL returns the Gravatar image URL for email.  Gravatar falls
// back to a generated identicon for unknown addresses.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}
