package customcmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Control fields of a directive. Everything else is payload for the renderer.
const (
	fieldType          = "type"
	fieldSelfDelete    = "self_delete"
	fieldDefaultArgs   = "default_args"
	fieldDocumentation = "documentation"
)

// Directive is a parsed, expanded template body.
type Directive struct {
	// Type is the privilege tag; empty means unprivileged.
	Type       string
	SelfDelete bool
	// DefaultArgs are consumed during expansion and never rendered.
	DefaultArgs []string
	// Documentation is the authoring-time description; never rendered.
	Documentation string
	// Payload holds the remaining fields verbatim.
	Payload map[string]json.RawMessage
}

// HasDefaults reports whether the body declared default_args.
func (d *Directive) HasDefaults() bool {
	return d.DefaultArgs != nil
}

// Field decodes a payload field into v. It reports false if the field is absent.
func (d *Directive) Field(name string, v any) (bool, error) {
	raw, ok := d.Payload[name]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("field %s: %w", name, err)
	}
	return true, nil
}

// MarshalPayload re-encodes the renderable part of the directive.
func (d *Directive) MarshalPayload() ([]byte, error) {
	return json.Marshal(d.Payload)
}

// ParseDirective parses a decoded body. The body must be a single JSON object;
// control fields must have their declared types (null counts as absent).
func ParseDirective(body string) (*Directive, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, &MalformedTemplateError{Err: err}
	}
	if fields == nil {
		return nil, &MalformedTemplateError{Err: errors.New("body must be a JSON object")}
	}

	d := &Directive{}
	if raw, ok := take(fields, fieldType); ok {
		if err := json.Unmarshal(raw, &d.Type); err != nil {
			return nil, &MalformedTemplateError{Err: fmt.Errorf("%s must be a string: %w", fieldType, err)}
		}
	}
	if raw, ok := take(fields, fieldSelfDelete); ok {
		if err := json.Unmarshal(raw, &d.SelfDelete); err != nil {
			return nil, &MalformedTemplateError{Err: fmt.Errorf("%s must be a boolean: %w", fieldSelfDelete, err)}
		}
	}
	if raw, ok := take(fields, fieldDefaultArgs); ok {
		args := []string{}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &MalformedTemplateError{Err: fmt.Errorf("%s must be an array of strings: %w", fieldDefaultArgs, err)}
		}
		d.DefaultArgs = args
	}
	if raw, ok := take(fields, fieldDocumentation); ok {
		if err := json.Unmarshal(raw, &d.Documentation); err != nil {
			return nil, &MalformedTemplateError{Err: fmt.Errorf("%s must be a string: %w", fieldDocumentation, err)}
		}
	}

	d.Payload = fields
	return d, nil
}

// take removes a field and returns it unless it was absent or null.
func take(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok {
		return nil, false
	}
	delete(fields, name)
	if isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
