package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/config"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/registry"
)

// setupEnv isolates the test from the caller's environment.
func setupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHATGRAPH_PROVIDER", "OPENAI_API_KEY", "CHATGRAPH_MODEL", "CHATGRAPH_BASE_URL",
		"CHATGRAPH_TIMEOUT", "CHATGRAPH_MAX_STEPS", "CHATGRAPH_LOG_LEVEL", "CHATGRAPH_LOG_FORMAT",
		"CHATGRAPH_INVENTORY_DRIVER", "CHATGRAPH_INVENTORY_DSN",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GROQ_API_KEY", "test-key")
}

func mockFactory(client llm.Client) clientFactory {
	return func(config.ModelSettings) llm.Client { return client }
}

func runCLI(t *testing.T, client llm.Client, input string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(input), &stdout, &stderr, mockFactory(client))
	return stdout.String(), stderr.String(), err
}

func TestRun_List(t *testing.T) {
	stdout, _, err := runCLI(t, nil, "", "-list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "booking"))
	assert.True(t, strings.HasPrefix(lines[1], "chatbot"))
	assert.True(t, strings.HasPrefix(lines[2], "intent"))
}

func TestRun_Chatbot(t *testing.T) {
	setupEnv(t)
	client := llm.NewMockClient("Go was released in 2009.")

	stdout, _, err := runCLI(t, client, "When was Go released?\n")
	require.NoError(t, err)

	assert.Equal(t, "Ask something: \nGo was released in 2009.\n", stdout)
	assert.Equal(t, []llm.Message{llm.UserMessage("When was Go released?")}, client.LastCall().Messages)
}

func TestRun_IntentVerbose(t *testing.T) {
	setupEnv(t)

	stdout, _, err := runCLI(t, llm.NewMockClient(""), "hello", "-workflow", "intent", "-v")
	require.NoError(t, err)

	assert.Contains(t, stdout, "[1] classifier\n")
	assert.Contains(t, stdout, "[2] greeting\n")
	assert.True(t, strings.HasSuffix(stdout, "Hey! How can I assist you today?\n"))
}

func TestRun_Booking(t *testing.T) {
	setupEnv(t)
	client := llm.NewMockClient(`{"intent":"book_hotel","city":"Mumbai","date":"tomorrow","room_type":"deluxe"}`)

	stdout, _, err := runCLI(t, client, "Book deluxe room in Mumbai for tomorrow\n", "-workflow", "booking")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Your deluxe room in Mumbai is booked for tomorrow.")
}

func TestRun_BookingSQLite(t *testing.T) {
	setupEnv(t)
	t.Setenv("CHATGRAPH_INVENTORY_DRIVER", "sqlite")
	t.Setenv("CHATGRAPH_INVENTORY_DSN", ":memory:")
	client := llm.NewMockClient(`{"intent":"book_hotel","city":"Delhi","date":"tomorrow","room_type":"deluxe"}`)

	stdout, _, err := runCLI(t, client, "Book deluxe room in Delhi for tomorrow\n", "-workflow", "booking")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sorry, room not available.")
}

func TestRun_UnknownWorkflow(t *testing.T) {
	_, _, err := runCLI(t, nil, "", "-workflow", "agent")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRun_MissingAPIKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("GROQ_API_KEY", "")

	_, _, err := runCLI(t, llm.NewMockClient(""), "hi")
	assert.ErrorContains(t, err, "APIKey")
}

func TestRun_NoInput(t *testing.T) {
	setupEnv(t)

	_, _, err := runCLI(t, llm.NewMockClient(""), "   \n")
	assert.ErrorIs(t, err, errNoInput)
}

func TestRun_FailureIsGenericAndLogged(t *testing.T) {
	setupEnv(t)
	client := llm.NewMockClient("").WithError(errors.New("upstream exploded"))

	_, stderr, err := runCLI(t, client, "hi")
	assert.ErrorIs(t, err, errRunFailed)
	assert.NotContains(t, err.Error(), "upstream exploded")
	assert.Contains(t, stderr, "upstream exploded")
}

func TestRun_MalformedEnv(t *testing.T) {
	setupEnv(t)
	t.Setenv("CHATGRAPH_MAX_STEPS", "lots")

	_, _, err := runCLI(t, llm.NewMockClient(""), "hi")
	assert.ErrorContains(t, err, "CHATGRAPH_MAX_STEPS")
}

func TestRun_InventoryUnavailable(t *testing.T) {
	setupEnv(t)
	client := llm.NewMockClient("unused")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, nil, strings.NewReader("hi\n"), &stdout, &stderr, mockFactory(client))

	assert.ErrorContains(t, err, "inventory unavailable")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stdout.String())
	assert.Zero(t, client.CallCount())
}

func TestRun_BadFlag(t *testing.T) {
	_, stderr, err := runCLI(t, nil, "", "-nope")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Usage: chatgraph")
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("first line\r\nsecond"))
	require.NoError(t, err)
	assert.Equal(t, "first line", line)

	line, err = readLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", line)

	_, err = readLine(strings.NewReader(""))
	assert.ErrorIs(t, err, errNoInput)
}
