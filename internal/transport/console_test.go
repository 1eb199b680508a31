package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/testutil"
)

func TestConsoleRunsLinesAsConfiguredRole(t *testing.T) {
	f := newFixture()
	f.start()
	defer f.stop()

	in := strings.NewReader("addbot 2\n\nstatus\nnonsense\n")
	var out bytes.Buffer
	console := NewConsole(f.mux, f.sessions, in, &out, policy.Admin, testutil.NopLogger())

	require.NoError(t, console.Run(context.Background()))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, ConsolePrompt))
	assert.Contains(t, text, "Added 2 Bots")
	assert.Contains(t, text, "Players: 0 - Bots: 2")
	assert.Contains(t, text, "ERROR: Unknown command, type /help for command list")
	assert.Equal(t, 5, strings.Count(text, ConsolePrompt))
	assert.Equal(t, 0, f.sessions.Count())
}

func TestConsoleRoleIsConfigurable(t *testing.T) {
	f := newFixture()
	f.start()
	defer f.stop()

	var out bytes.Buffer
	console := NewConsole(f.mux, f.sessions, strings.NewReader("shutdown\n"), &out, policy.Guest, testutil.NopLogger())

	require.NoError(t, console.Run(context.Background()))
	assert.Contains(t, out.String(), "ERROR: access denied!")
}

func TestConsoleStopsWhenMultiplexerCloses(t *testing.T) {
	f := newFixture()
	f.start()
	defer f.stop()
	require.NoError(t, f.mux.Shutdown(context.Background()))

	var out bytes.Buffer
	console := NewConsole(f.mux, f.sessions, strings.NewReader("status\nstatus\n"), &out, policy.Admin, testutil.NopLogger())

	require.NoError(t, console.Run(context.Background()))
	assert.NotContains(t, out.String(), "Connected players")
}

func TestConsoleSinkFormatsChat(t *testing.T) {
	var out bytes.Buffer
	sink := &consoleSink{w: &out}

	require.NoError(t, sink.Deliver(model.ChatMessage{Text: "BROADCAST: hi"}))
	require.NoError(t, sink.Deliver(model.ChatMessage{From: 3, FromName: "alice", Text: "hello"}))

	assert.Equal(t, "BROADCAST: hi\n[chat] alice: hello\n", out.String())
}
