// Package chatbot is the single-node workflow: the conversation goes to the
// model and its reply is appended.
package chatbot

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

// NodeChatbot is the only node in the graph.
const NodeChatbot = "chatbot"

var errNilClient = errors.New("chatbot: model client is required")

// State is threaded through the graph.
type State struct {
	Messages []llm.Message `validate:"min=1"`
}

// NewState starts a conversation with one user message.
func NewState(input string) State {
	return State{Messages: []llm.Message{llm.UserMessage(input)}}
}

// New builds and compiles the chatbot graph with state validation on.
func New(client llm.Client, opts ...chatgraph.CompileOption) (*chatgraph.CompiledGraph[State], error) {
	if client == nil {
		return nil, errNilClient
	}

	g := chatgraph.NewGraph[State]()
	if err := errors.Join(
		g.AddNode(NodeChatbot, respond(client)),
		g.SetEntry(NodeChatbot),
		g.AddEdge(NodeChatbot, chatgraph.END),
	); err != nil {
		return nil, err
	}

	return g.Compile(append([]chatgraph.CompileOption{chatgraph.WithName("chatbot"), chatgraph.WithStateValidation()}, opts...)...)
}

func respond(client llm.Client) chatgraph.NodeFunc[State] {
	return func(ctx chatgraph.Context, s State) (State, error) {
		ctx.Logger().Debug("sending conversation", "messages", len(s.Messages))

		resp, err := client.Complete(ctx, llm.CompletionRequest{Messages: s.Messages})
		if err != nil {
			return s, fmt.Errorf("chatbot reply: %w", err)
		}

		ctx.Logger().Debug("model replied",
			"model", resp.Model,
			"output_tokens", resp.Usage.OutputTokens,
		)
		s.Messages = llm.Append(s.Messages, resp.Message())
		return s, nil
	}
}
