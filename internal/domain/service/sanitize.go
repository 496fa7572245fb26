package service

import (
	"fmt"
	"path"
	"strings"
)

// reservedChars are disallowed on common filesystems in addition to path
// separators and control characters
const reservedChars = `<>:"|?*`

// Sanitize maps a raw name to one that is safe on common filesystems. Every
// path separator, control character, and reserved character becomes an
// underscore. The result is deterministic and idempotent, and never empty:
// an input with nothing left yields a single underscore.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(reservedChars, r):
			return '_'
		default:
			return r
		}
	}, name)

	if cleaned == "" {
		return "_"
	}
	return cleaned
}

// NameRegistry tracks the filenames claimed within one output directory
// during a run and disambiguates collisions. Its scope is a single course
// directory; collisions across courses are not its concern.
type NameRegistry struct {
	claimed map[string]bool
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{claimed: make(map[string]bool)}
}

// Claim reserves a free variant of the given sanitized name. The first caller
// gets the name unchanged; later callers get a numeric disambiguator before
// the extension: name_1.ext, name_2.ext, ...
func (r *NameRegistry) Claim(name string) string {
	if !r.claimed[name] {
		r.claimed[name] = true
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !r.claimed[candidate] {
			r.claimed[candidate] = true
			return candidate
		}
	}
}
