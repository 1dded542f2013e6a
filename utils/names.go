package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// MaxDisplayNameLength caps stored display names (in runes).
const MaxDisplayNameLength = 64

// NormalizeDisplayName composes the name to NFC, drops control characters,
// collapses whitespace runs and truncates to MaxDisplayNameLength runes.
func NormalizeDisplayName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	space := false
	count := 0
	for _, r := range name {
		if count >= MaxDisplayNameLength {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case unicode.IsControl(r):
			continue
		}
		if space {
			b.WriteByte(' ')
			count++
			space = false
			if count >= MaxDisplayNameLength {
				break
			}
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// ASCIIDisplayName transliterates a display name for outputs that cannot
// draw arbitrary Unicode. Pure ASCII input is returned unchanged.
func ASCIIDisplayName(name string) string {
	ascii := true
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return name
	}

	out := strings.TrimSpace(unidecode.Unidecode(name))
	if out == "" {
		return "?"
	}
	return out
}
