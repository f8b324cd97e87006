package customcmd

import (
	"strings"
	"unicode"
)

// SplitArgs splits invocation text on whitespace. A double-quoted run is one
// argument even if it contains whitespace; the quotes stay in the token and are
// removed by EscapeArg. An unterminated quote runs to the end of the input.
func SplitArgs(input string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)

	flush := func() {
		if started {
			args = append(args, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return args
}

// ExtractBody returns the JSON body of a definition message, without a
// surrounding ``` or ```json code fence.
func ExtractBody(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") || len(body) < 6 || !strings.HasSuffix(body, "```") {
		return body
	}

	body = strings.TrimSuffix(body[3:], "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		lang := strings.TrimSpace(body[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			body = body[nl+1:]
		}
	} else if strings.HasPrefix(strings.ToLower(body), "json") {
		body = body[len("json"):]
	}
	return strings.TrimSpace(body)
}
