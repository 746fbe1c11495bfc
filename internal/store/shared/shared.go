package shared

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func IsUUID(s string) bool { return uuidRe.MatchString(s) }

// Slugify builds a stable ASCII slug from catalog text: accents folded
// (important for Vietnamese titles), [a-z0-9] with single '-' separators.
// Used for object-storage keys, not for lookups.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "n-a"
	}

	t := transform.Chain(
		norm.NFKD,
		transform.RemoveFunc(func(r rune) bool { return unicode.Is(unicode.Mn, r) }),
		norm.NFC,
	)
	normed, _, _ := transform.String(t, s)

	var b strings.Builder
	b.Grow(len(normed))
	prevDash := false
	for _, r := range normed {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '_' || r == '-' || unicode.IsSpace(r):
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "n-a"
	}
	return out
}

// EscapeLike escapes LIKE metacharacters in user-supplied search text.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
