package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"inkwell/store"
)

// slugify turns a title into its canonical URL-safe form: lowercase
// alphanumerics with single hyphens for every run of anything else.
// Deterministic by construction so the same title always yields the same base
// slug.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// freeSlug finds the first unclaimed slug for the base candidate: base itself,
// then base-2, base-3, and so on. The walk is deterministic, so two creations
// from the same title converge on the same candidate and the storage unique
// constraint breaks the tie.
func (s *Service) freeSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", s.unavailable("checking slug", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// isConflict reports whether err is the storage uniqueness sentinel.
func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}
