// Package intent routes a message by keyword to a greeting, a model-backed
// technical answer or a canned general reply.
package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

// Node IDs.
const (
	NodeClassifier = "classifier"
	NodeGreeting   = "greeting"
	NodeTechnical  = "technical"
	NodeGeneral    = "general"
)

// Intents returned by Classify. Each is also the route label.
const (
	Greeting  chatgraph.Label = "greeting"
	Technical chatgraph.Label = "technical"
	General   chatgraph.Label = "general"
)

// Canned replies.
const (
	GreetingReply = "Hey! How can I assist you today?"
	GeneralReply  = "That's interesting! Let me think about it."
)

var errNilClient = errors.New("intent: model client is required")

// State is threaded through the graph.
type State struct {
	Messages []llm.Message `validate:"min=1"`
	Intent   chatgraph.Label
}

// NewState starts a conversation with one user message.
func NewState(input string) State {
	return State{Messages: []llm.Message{llm.UserMessage(input)}}
}

// Classify picks an intent from keywords, ignoring case.
// "hello" wins over "python" when both appear.
func Classify(text string) chatgraph.Label {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hello"):
		return Greeting
	case strings.Contains(lower, "python"):
		return Technical
	default:
		return General
	}
}

// New builds and compiles the intent graph with state validation on.
func New(client llm.Client, opts ...chatgraph.CompileOption) (*chatgraph.CompiledGraph[State], error) {
	if client == nil {
		return nil, errNilClient
	}

	g := chatgraph.NewGraph[State]()
	if err := errors.Join(
		g.AddNode(NodeClassifier, classify),
		g.AddNode(NodeGreeting, reply(GreetingReply)),
		g.AddNode(NodeTechnical, technical(client)),
		g.AddNode(NodeGeneral, reply(GeneralReply)),
		g.SetEntry(NodeClassifier),
		g.AddConditionalEdges(NodeClassifier, byIntent, map[chatgraph.Label]string{
			Greeting:  NodeGreeting,
			Technical: NodeTechnical,
			General:   NodeGeneral,
		}, chatgraph.WithLabels(Greeting, Technical, General)),
		g.AddEdge(NodeGreeting, chatgraph.END),
		g.AddEdge(NodeTechnical, chatgraph.END),
		g.AddEdge(NodeGeneral, chatgraph.END),
	); err != nil {
		return nil, err
	}

	return g.Compile(append([]chatgraph.CompileOption{chatgraph.WithName("intent"), chatgraph.WithStateValidation()}, opts...)...)
}

func classify(ctx chatgraph.Context, s State) (State, error) {
	s.Intent = Classify(llm.LastContent(s.Messages))
	ctx.Logger().Info("intent detected", "intent", s.Intent)
	return s, nil
}

func byIntent(_ chatgraph.Context, s State) chatgraph.Label {
	return s.Intent
}

func reply(text string) chatgraph.NodeFunc[State] {
	return func(_ chatgraph.Context, s State) (State, error) {
		s.Messages = llm.Append(s.Messages, llm.AssistantMessage(text))
		return s, nil
	}
}

func technical(client llm.Client) chatgraph.NodeFunc[State] {
	return func(ctx chatgraph.Context, s State) (State, error) {
		resp, err := client.Complete(ctx, llm.CompletionRequest{Messages: s.Messages})
		if err != nil {
			return s, fmt.Errorf("technical reply: %w", err)
		}
		s.Messages = llm.Append(s.Messages, resp.Message())
		return s, nil
	}
}
