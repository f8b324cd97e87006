package customcmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func content(t *testing.T, d *Directive) string {
	t.Helper()
	var s string
	found, err := d.Field("content", &s)
	require.NoError(t, err)
	require.True(t, found, "content field missing")
	return s
}

func TestExpandSubstitutesArguments(t *testing.T) {
	exp, err := Expand(`{"content":"Hello $0, your score is $1"}`, []string{"Frodo", "42"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Frodo, your score is 42", content(t, exp.Directive))
	assert.False(t, exp.Reparsed)
}

func TestExpandKeepsAuthoredEscapes(t *testing.T) {
	exp, err := Expand(`{"content":"costs \$0, paid $0"}`, []string{"5"})
	require.NoError(t, err)
	assert.Equal(t, "costs $0, paid 5", content(t, exp.Directive))
}

func TestExpandDistinguishesMultiDigitPlaceholders(t *testing.T) {
	exp, err := Expand(`{"content":"$1 $10"}`, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b $10", content(t, exp.Directive))
}

func TestExpandArgumentsAreNotReinterpreted(t *testing.T) {
	const body = `{"type":"meme","title":"fixed","self_delete":true,"content":"say $0 / $1"}`

	base, err := Expand(body, nil)
	require.NoError(t, err)

	cases := []struct {
		name string
		arg  string
		want string
	}{
		{"placeholder", "$1", "$1"},
		{"mention", "@everyone", "@\u200Beveryone"},
		{"backslash", `C:\path\`, `C:\path\`},
		{"newline", "two\nlines", "two\nlines"},
		{"quote", `say "hi`, `say "hi`},
		{"breakout", `x","type":"admin`, `x","type":"admin`},
		{"escaped prefix", `\$0`, `\$0`},
		{"marker", "\u200B$1", "\u200B$1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := Expand(body, []string{tc.arg, "second"})
			require.NoError(t, err)

			d := exp.Directive
			assert.Equal(t, base.Directive.Type, d.Type)
			assert.Equal(t, base.Directive.SelfDelete, d.SelfDelete)
			assert.Len(t, d.Payload, len(base.Directive.Payload))

			var title string
			_, err = d.Field("title", &title)
			require.NoError(t, err)
			assert.Equal(t, "fixed", title)

			assert.Equal(t, "say "+tc.want+" / second", content(t, d))
		})
	}
}

func TestExpandDefaultArguments(t *testing.T) {
	const body = `{"default_args":["a","b","c"],"content":"$0 $1 $2 $3"}`

	t.Run("one supplied", func(t *testing.T) {
		exp, err := Expand(body, []string{"X"})
		require.NoError(t, err)
		assert.True(t, exp.Reparsed)
		assert.Equal(t, "X b c $3", content(t, exp.Directive))
		assert.NotContains(t, exp.Directive.Payload, "default_args")
	})

	t.Run("none supplied", func(t *testing.T) {
		exp, err := Expand(body, nil)
		require.NoError(t, err)
		assert.Equal(t, "a b c $3", content(t, exp.Directive))
	})

	t.Run("more supplied than defaults", func(t *testing.T) {
		exp, err := Expand(body, []string{"1", "2", "3", "4", "5"})
		require.NoError(t, err)
		assert.False(t, exp.Reparsed)
		assert.Equal(t, "1 2 3 4", content(t, exp.Directive))
	})

	t.Run("defaults are escaped", func(t *testing.T) {
		exp, err := Expand(`{"default_args":["@here \"$1\""],"content":"$0"}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "@\u200Bhere \"$1\"", content(t, exp.Directive))
	})
}

func TestExpandReparseOnlyWhenBoundaryPlaceholderPresent(t *testing.T) {
	// $1 is missing, so the defaults never reach the rendered directive
	exp, err := Expand(`{"default_args":["a","b","c"],"content":"$0 $2"}`, []string{"X"})
	require.NoError(t, err)
	assert.False(t, exp.Reparsed)
	assert.Same(t, exp.Initial, exp.Directive)
	assert.Equal(t, "X $2", content(t, exp.Directive))
}

func TestExpandDefaultsCanChangeType(t *testing.T) {
	exp, err := Expand(`{"default_args":["admin"],"type":"$0","content":"x"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "$0", exp.Initial.Type)
	assert.Equal(t, "admin", exp.Directive.Type)
	assert.True(t, exp.Reparsed)
}

func TestExpandMalformedFailsClosed(t *testing.T) {
	for _, body := range []string{
		`{"content":"x"`,
		`["content"]`,
		`null`,
		`{"content":$0}`,
		`{"type":1}`,
		`{"self_delete":"yes"}`,
		`{"default_args":"a"}`,
	} {
		exp, err := Expand(body, nil)
		assert.Nil(t, exp, body)
		var malformed *MalformedTemplateError
		assert.True(t, errors.As(err, &malformed), body)
	}
}

func TestExpandNumericPlaceholderOutsideString(t *testing.T) {
	exp, err := Expand(`{"embed":{"color":$0},"content":"c"}`, []string{"255"})
	require.NoError(t, err)

	var embed struct {
		Color int `json:"color"`
	}
	found, err := exp.Directive.Field("embed", &embed)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 255, embed.Color)
}

func TestParseDirectiveStripsControlFields(t *testing.T) {
	d, err := ParseDirective(`{"type":null,"documentation":"says hi","default_args":[],"content":"hi","embed":{"title":"t"}}`)
	require.NoError(t, err)
	assert.Empty(t, d.Type)
	assert.Equal(t, "says hi", d.Documentation)
	assert.True(t, d.HasDefaults())
	assert.Len(t, d.Payload, 2)
	assert.Contains(t, d.Payload, "embed")

	raw, err := d.MarshalPayload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"hi","embed":{"title":"t"}}`, string(raw))
}
