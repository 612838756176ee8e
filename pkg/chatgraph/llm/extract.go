package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExtractError reports model output that could not be turned into the target type.
type ExtractError struct {
	// Raw is the model output as received.
	Raw string
	// Err is the decode or validation failure.
	Err error
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// ExtractRequest describes a structured extraction.
type ExtractRequest struct {
	// Text is the input to extract from, usually the latest user message.
	Text string
	// Schema describes the JSON object the model must return, field by field.
	Schema string
	// Model overrides the client's default model.
	Model string
}

// Extract asks the model for a JSON object matching req.Schema and decodes
// it into T. Structs are checked against their `validate` tags.
//
// Client failures are returned unchanged so IsRetryable still applies;
// undecodable or invalid output yields *ExtractError.
func Extract[T any](ctx context.Context, client Client, req ExtractRequest) (T, error) {
	var out T

	resp, err := client.Complete(ctx, CompletionRequest{
		SystemPrompt: extractPrompt(req.Schema),
		Messages:     []Message{UserMessage(req.Text)},
		Model:        req.Model,
		JSONMode:     true,
	})
	if err != nil {
		return out, err
	}

	raw := resp.Content
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &out); err != nil {
		return out, &ExtractError{Raw: raw, Err: err}
	}

	if isStruct(out) {
		if err := validate.Struct(out); err != nil {
			return out, &ExtractError{Raw: raw, Err: err}
		}
	}
	return out, nil
}

func extractPrompt(schema string) string {
	var b strings.Builder
	b.WriteString("Extract structured information from the user's message.\n")
	b.WriteString("Reply with a single JSON object and nothing else.\n")
	b.WriteString("Use an empty string for any field the message does not mention.\n")
	if schema != "" {
		b.WriteString("Fields:\n")
		b.WriteString(schema)
	}
	return b.String()
}

// stripCodeFence removes a surrounding ```json fence some models add even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind() == reflect.Struct && !reflect.ValueOf(v).IsNil()
	}
	return t.Kind() == reflect.Struct
}
