package customcmd

import (
	"strconv"
	"strings"
)

const (
	// Prefix starts a positional placeholder: $0, $1, ...
	Prefix = '$'
	// Marker is the invisible character put in front of every prefix the author
	// wrote, so placeholders can be told apart from substituted text.
	Marker = '\u200B'
	// MentionTrigger is neutralized in substituted values.
	MentionTrigger = '@'
)

var (
	marked    = string(Marker) + string(Prefix)
	escaped   = `\` + string(Prefix)
	cancelled = `\` + marked
)

// Encode marks every prefix in a stored body. An authored escape (backslash
// followed by the prefix) keeps its unmarked form.
func Encode(raw string) string {
	if !strings.ContainsRune(raw, Prefix) {
		return raw
	}
	body := strings.ReplaceAll(raw, string(Prefix), marked)
	return strings.ReplaceAll(body, cancelled, escaped)
}

// Decode turns escaped and marked prefixes back into bare prefixes in a single
// left-to-right pass. Marker characters not followed by a prefix are kept, so
// mention separators inserted by EscapeValue survive.
func Decode(expanded string) string {
	if !strings.ContainsRune(expanded, Prefix) {
		return expanded
	}

	var b strings.Builder
	b.Grow(len(expanded))
	for i := 0; i < len(expanded); {
		switch {
		case strings.HasPrefix(expanded[i:], escaped):
			b.WriteRune(Prefix)
			i += len(escaped)
		case strings.HasPrefix(expanded[i:], marked):
			b.WriteRune(Prefix)
			i += len(marked)
		default:
			b.WriteByte(expanded[i])
			i++
		}
	}
	return b.String()
}

// Placeholder returns the marked placeholder for argument i.
func Placeholder(i int) string {
	return marked + strconv.Itoa(i)
}

// EscapeArg prepares a supplied argument for insertion: surrounding double
// quotes are dropped, then the value is escaped with EscapeValue.
func EscapeArg(arg string) string {
	return EscapeValue(strings.Trim(arg, `"`))
}

// EscapeValue escapes text for insertion into a JSON body so it can't form a
// placeholder, a mention, or break out of a JSON string.
func EscapeValue(arg string) string {
	var b strings.Builder
	b.Grow(len(arg) + 8)
	for _, r := range arg {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case Prefix:
			b.WriteString(escaped)
		case MentionTrigger:
			b.WriteRune(MentionTrigger)
			b.WriteRune(Marker)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[r>>4])
				b.WriteByte(hexDigits[r&0xF])
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"
