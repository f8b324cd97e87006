package customcmd

import (
	"strings"
)

// Expansion is the outcome of expanding a template body for one invocation.
type Expansion struct {
	// Initial is the directive parsed after supplied arguments were substituted.
	Initial *Directive
	// Directive is the directive to authorize and render. It differs from
	// Initial only when default arguments triggered a re-parse.
	Directive *Directive
	// Body is the decoded text Directive was parsed from.
	Body string
	// Reparsed is set when default arguments changed the body.
	Reparsed bool
}

// Expand substitutes args into body, resolves default_args and parses the
// result. Placeholders with no value are left in the text.
func Expand(body string, args []string) (*Expansion, error) {
	encoded := Encode(body)
	for i, arg := range args {
		encoded = replacePlaceholder(encoded, i, EscapeArg(arg))
	}

	decoded := Decode(encoded)
	d, err := ParseDirective(decoded)
	if err != nil {
		return nil, err
	}
	exp := &Expansion{Initial: d, Directive: d, Body: decoded}
	if !d.HasDefaults() {
		return exp, nil
	}

	n := len(args)
	// Only the boundary placeholder decides whether the body is parsed again;
	// defaults past it are still substituted.
	changed := hasPlaceholder(encoded, n)
	start := min(n, len(d.DefaultArgs))
	for i, def := range d.DefaultArgs[start:] {
		encoded = replacePlaceholder(encoded, start+i, EscapeValue(def))
	}
	if !changed {
		return exp, nil
	}

	decoded = Decode(encoded)
	final, err := ParseDirective(decoded)
	if err != nil {
		return nil, err
	}
	exp.Directive = final
	exp.Body = decoded
	exp.Reparsed = true
	return exp, nil
}

// replacePlaceholder substitutes every marked placeholder for index i. A match
// followed by another digit belongs to a larger index and is skipped.
func replacePlaceholder(body string, i int, value string) string {
	token := Placeholder(i)
	if !strings.Contains(body, token) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for {
		at := indexPlaceholder(body, token)
		if at < 0 {
			b.WriteString(body)
			return b.String()
		}
		b.WriteString(body[:at])
		b.WriteString(value)
		body = body[at+len(token):]
	}
}

func hasPlaceholder(body string, i int) bool {
	return indexPlaceholder(body, Placeholder(i)) >= 0
}

// indexPlaceholder finds token not immediately followed by a digit.
func indexPlaceholder(body, token string) int {
	offset := 0
	for {
		at := strings.Index(body[offset:], token)
		if at < 0 {
			return -1
		}
		end := offset + at + len(token)
		if end >= len(body) || !isDigit(body[end]) {
			return offset + at
		}
		offset = end
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
