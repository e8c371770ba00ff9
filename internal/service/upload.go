package service

import (
	"errors"
	"html"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxDescriptionLength bounds image descriptions after sanitising.
const MaxDescriptionLength = 100

// MaxCommentLength bounds comment text after sanitising.
const MaxCommentLength = 255

var (
	ErrUnsupportedImage  = errors.New("file is not a supported image")
	ErrDescriptionLength = errors.New("description is too long")
	ErrCommentLength     = errors.New("comment must be between 1 and 255 characters")
)

// textPolicy strips every HTML element from user supplied text.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText removes markup from s and trims the result.  The policy
// entity-escapes what it keeps, so the output is unescaped back to plain
// text and stripped again until no markup reappears; "&lt;b&gt;" cannot
// smuggle a tag through.
func SanitizeText(s string) string {
	text := s
	for i := 0; i < 4; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(text))
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}

// SniffImage checks that r starts with a decodable image header and
// rewinds it.  It returns the format name, e.g. "png" or "webp".
func SniffImage(r io.ReadSeeker) (string, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", ErrUnsupportedImage
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return format, nil
}

// CleanComment sanitises comment text and enforces its length bounds.
func CleanComment(s string) (string, error) {
	text := SanitizeText(s)
	if n := utf8.RuneCountInString(text); n == 0 || n > MaxCommentLength {
		return "", ErrCommentLength
	}
	return text, nil
}
