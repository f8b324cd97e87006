package custom

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lotr-bot/internal/authz"
	"github.com/keshon/lotr-bot/internal/check"
	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/customcmd"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

type invokeCall struct {
	name string
	args []string
}

type fakeService struct {
	defined   map[string]string
	defineErr error
	removeErr error
	templates map[string]*customcmd.Template
	list      []customcmd.Summary
	invokes   []invokeCall
	invokeErr error
}

func (f *fakeService) Define(_ context.Context, _, name, raw string) (bool, error) {
	if f.defineErr != nil {
		return false, f.defineErr
	}
	f.defined[name] = raw
	return false, nil
}

func (f *fakeService) Remove(context.Context, string, string) error { return f.removeErr }

func (f *fakeService) Display(_ context.Context, _, name string) (*customcmd.Template, error) {
	if t, ok := f.templates[name]; ok {
		return t, nil
	}
	return nil, customcmd.ErrNotFound
}

func (f *fakeService) List(context.Context, string) ([]customcmd.Summary, error) {
	return f.list, nil
}

func (f *fakeService) Invoke(_ context.Context, _ authz.Request, name string, args []string) error {
	f.invokes = append(f.invokes, invokeCall{name, args})
	return f.invokeErr
}

type fakeResponder struct {
	replies []string
	reacts  []string
	embeds  []*discordgo.MessageEmbed
}

func (f *fakeResponder) Reply(_ context.Context, _, _, content string) error {
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeResponder) React(_ context.Context, _, _, emoji string) error {
	f.reacts = append(f.reacts, emoji)
	return nil
}

func (f *fakeResponder) ReplyEmbed(_ context.Context, _ string, e *discordgo.MessageEmbed) error {
	f.embeds = append(f.embeds, e)
	return nil
}

func (f *fakeResponder) Warn(context.Context, string, string) error { return nil }

type admins map[string]bool

func (a admins) Privileged(_ context.Context, _, userID string) bool { return a[userID] }
func (a admins) Blacklisted(context.Context, string, string, string) bool {
	return false
}

type fixture struct {
	svc    *fakeService
	resp   *fakeResponder
	logs   *bytes.Buffer
	group  cmd.Command
	runner cmd.Command
}

func newFixture() *fixture {
	return newLimitedFixture(check.NewRateLimiter(600, 100))
}

func newLimitedFixture(limiter *check.RateLimiter) *fixture {
	svc := &fakeService{defined: map[string]string{}, templates: map[string]*customcmd.Template{}}
	resp := &fakeResponder{}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	group, runner := New(Deps{
		Service:   svc,
		Responder: resp,
		Hooks:     &check.Hooks{Responder: resp, Logger: logger},
		Auth:      admins{"gandalf": true},
		Limiter:   limiter,
		Logger:    logger,
	})
	return &fixture{svc: svc, resp: resp, logs: logs, group: group, runner: runner}
}

func invocation(user, raw string) *cmd.Invocation {
	return &cmd.Invocation{
		Name: "command", Args: customcmd.SplitArgs(raw), Raw: raw,
		GuildID: "g1", ChannelID: "c1", MessageID: "m1", UserID: user,
	}
}

func TestDefine(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the body after the name", func(t *testing.T) {
		f := newFixture()
		raw := "define Hello ```json\n{\"content\":\"Hello $0\"}\n```"
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", raw)))
		assert.Equal(t, "```json\n{\"content\":\"Hello $0\"}\n```", f.svc.defined["hello"])
		assert.Equal(t, []string{command.SuccessEmoji}, f.resp.reacts)
	})

	t.Run("requires an admin", func(t *testing.T) {
		f := newFixture()
		err := f.group.Run(ctx, invocation("pippin", `define x {"content":"hi"}`))
		var failed *check.CheckFailedError
		require.ErrorAs(t, err, &failed)
		assert.Empty(t, f.svc.defined)
		assert.Equal(t, []string{authz.MsgNotAdmin}, f.resp.replies)
	})

	t.Run("reserved name", func(t *testing.T) {
		f := newFixture()
		f.svc.defineErr = customcmd.ErrReservedName
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", `define Help {}`)))
		assert.Equal(t, []string{"You cannot add a command with the reserved name `help`"}, f.resp.replies)
		assert.Equal(t, []string{command.FailureEmoji}, f.resp.reacts)
	})

	t.Run("malformed body reports the parser error", func(t *testing.T) {
		f := newFixture()
		f.svc.defineErr = &customcmd.MalformedTemplateError{Name: "x", Err: errors.New("unexpected end")}
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", `define x {`)))
		require.Len(t, f.resp.replies, 1)
		assert.Contains(t, f.resp.replies[0], "unexpected end")
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.svc.defineErr = &customcmd.StoreUnavailableError{Operation: "put", Err: errors.New("down")}
		assert.Error(t, f.group.Run(ctx, invocation("gandalf", `define x {}`)))
		assert.Empty(t, f.resp.replies)
		assert.Equal(t, []string{command.FailureEmoji}, f.resp.reacts)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.group.Run(ctx, invocation("gandalf", "delete hello")))
	assert.Equal(t, []string{command.SuccessEmoji}, f.resp.reacts)

	f = newFixture()
	f.svc.removeErr = customcmd.ErrNotFound
	require.NoError(t, f.group.Run(ctx, invocation("gandalf", "remove hello")))
	assert.Equal(t, []string{command.FailureEmoji}, f.resp.reacts)
}

func TestDisplay(t *testing.T) {
	ctx := context.Background()

	t.Run("one command", func(t *testing.T) {
		f := newFixture()
		f.svc.templates["lore"] = &customcmd.Template{Name: "lore", Body: "{\"content\":\"```x```\"}", Description: "Lore"}
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", "show Lore")))
		require.Len(t, f.resp.embeds, 1)
		e := f.resp.embeds[0]
		assert.Equal(t, "Custom command: lore", e.Title)
		assert.Equal(t, "Lore", e.Description)
		assert.Equal(t, "```json\n{\"content\":\"`\u200B``x`\u200B``\"}```", e.Fields[0].Value)
	})

	t.Run("missing command", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", "display nope")))
		assert.Equal(t, []string{MsgNotFound}, f.resp.replies)
	})

	t.Run("list", func(t *testing.T) {
		f := newFixture()
		f.svc.list = []customcmd.Summary{{Name: "a"}, {Name: "b", Description: "Bee"}}
		require.NoError(t, f.group.Run(ctx, invocation("gandalf", "display")))
		require.Len(t, f.resp.embeds, 1)
		assert.Equal(t, "Custom commands", f.resp.embeds[0].Title)
		assert.Equal(t, "`b`  Bee\n\n`a`  _No description_\n", f.resp.embeds[0].Description)
	})
}

func TestDisplayEmbedTooLong(t *testing.T) {
	e := DisplayEmbed("big", &customcmd.Template{Body: strings.Repeat("x", 1013)})
	assert.Equal(t, MsgTooLong, e.Fields[0].Value)
	e = DisplayEmbed("fits", &customcmd.Template{Body: strings.Repeat("x", 1012)})
	assert.NotEqual(t, MsgTooLong, e.Fields[0].Value)
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, MsgNoneYet, FormatList(nil))
	assert.Equal(t, "`a`  _No description_\n", FormatList([]customcmd.Summary{{Name: "a"}}))
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()

	t.Run("through the group", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.group.Run(ctx, invocation("pippin", `hello "Frodo Baggins"`)))
		assert.Equal(t, []invokeCall{{"hello", []string{`"Frodo Baggins"`}}}, f.svc.invokes)
	})

	t.Run("bare name", func(t *testing.T) {
		f := newFixture()
		inv := invocation("pippin", "Frodo")
		inv.Name = "hello"
		require.NoError(t, f.runner.Run(ctx, inv))
		assert.Equal(t, []invokeCall{{"hello", []string{"Frodo"}}}, f.svc.invokes)
	})

	t.Run("handled outcomes are not errors", func(t *testing.T) {
		for _, err := range []error{customcmd.ErrNotFound, &authz.DeniedError{Tag: "admin"}} {
			f := newFixture()
			f.svc.invokeErr = err
			assert.NoError(t, f.group.Run(ctx, invocation("pippin", "hello")))
		}
	})

	t.Run("failures the service logged are not logged again", func(t *testing.T) {
		for _, err := range []error{
			&customcmd.RenderError{ChannelID: "c1", Err: errors.New("boom")},
			&customcmd.MalformedTemplateError{Name: "hello", Err: errors.New("bad json")},
		} {
			f := newFixture()
			f.svc.invokeErr = err
			assert.NoError(t, f.group.Run(ctx, invocation("pippin", "hello")))
			assert.NoError(t, f.runner.Run(ctx, &cmd.Invocation{Name: "hello", GuildID: "g1", ChannelID: "c1", UserID: "pippin"}))
			assert.NotContains(t, f.logs.String(), "command failed")
		}
	})

	t.Run("other failures surface", func(t *testing.T) {
		f := newFixture()
		f.svc.invokeErr = errors.New("unexpected")
		assert.Error(t, f.group.Run(ctx, invocation("pippin", "hello")))
		assert.Contains(t, f.logs.String(), "command failed")
	})

	t.Run("direct messages are ignored", func(t *testing.T) {
		f := newFixture()
		inv := &cmd.Invocation{Name: "hello", UserID: "pippin"}
		require.NoError(t, f.runner.Run(ctx, inv))
		assert.Empty(t, f.svc.invokes)
	})

	t.Run("direct messages do not spend rate limit tokens", func(t *testing.T) {
		f := newLimitedFixture(check.NewRateLimiter(1, 1))
		for i := 0; i < 3; i++ {
			require.NoError(t, f.runner.Run(ctx, &cmd.Invocation{Name: "hello", UserID: "pippin"}))
		}
		assert.Empty(t, f.resp.replies)

		inv := invocation("pippin", "")
		inv.Name = "hello"
		require.NoError(t, f.runner.Run(ctx, inv))
		require.Len(t, f.svc.invokes, 1)
		assert.Equal(t, "hello", f.svc.invokes[0].name)
		assert.Empty(t, f.resp.replies)
	})

	t.Run("empty group call", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.group.Run(ctx, invocation("pippin", "")))
		assert.Len(t, f.resp.replies, 1)
	})
}
