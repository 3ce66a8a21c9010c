package usdwriter

import "strings"

// sanitizeName mirrors primcache's prim-identifier sanitization (spec
// §8.1: idempotent, first character forced to '_' unless a letter or
// underscore, every other non [A-Za-z0-9_] character becomes '_'). It is
// duplicated here (rather than exported from primcache) because it is
// needed to name a reference *sub-prim* under an already-resolved parent
// path, not to resolve a category/name pair to a cache key.
func sanitizeName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteRune(r)
		case i == 0:
			if isLetter(r) {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		default:
			if isLetter(r) || isDigit(r) {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
