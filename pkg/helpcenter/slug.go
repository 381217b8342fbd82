package helpcenter

import (
	"fmt"
	"strings"
)

const maxSlugLen = 100

// fallbackSlug is used when a title yields no slug characters at all, e.g.
// a title written entirely in a non-Latin script. Editors can always set an
// explicit slug instead.
const fallbackSlug = "untitled"

func isSlugChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Slugify derives a URL-friendly slug from a title: lowercase ASCII letters
// and digits, everything else collapsed to single hyphens, trimmed to
// maxSlugLen. Non-ASCII characters are dropped rather than transliterated,
// so a title without any ASCII alphanumerics falls back to fallbackSlug.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case isSlugChar(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// ValidateSlug rejects slugs that are empty, too long, or contain anything
// other than lowercase ASCII alphanumerics and single interior hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug must not be empty", ErrInvalidInput)
	}
	if len(slug) > maxSlugLen {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidInput, maxSlugLen)
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") || strings.Contains(slug, "--") {
		return fmt.Errorf("%w: slug %q has malformed hyphens", ErrInvalidInput, slug)
	}
	for _, r := range slug {
		if r == '-' || isSlugChar(r) {
			continue
		}
		return fmt.Errorf("%w: slug %q contains invalid character %q", ErrInvalidInput, slug, r)
	}
	return nil
}
