package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// MaxTagLength is the longest tag name accepted.
const MaxTagLength = 25

var (
	ErrTooManyTags = errors.New("you can add up to 5 tags only")
	ErrTagTooLong  = errors.New("tag name is too long")
)

// ParseTags splits a comma separated tag list.  Names are trimmed, empty
// entries dropped and exact duplicates collapsed, keeping first-seen
// order.  Case matters: "Cat" and "cat" are different tags, matching the
// binary collation of tags.name.
func ParseTags(raw string) ([]string, error) {
	seen := make(map[string]struct{})
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > MaxTagLength {
			return nil, ErrTagTooLong
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) > model.MaxImageTags {
		return nil, ErrTooManyTags
	}
	return out, nil
}
