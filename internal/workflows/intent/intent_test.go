package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want chatgraph.Label
	}{
		{"hello there", Greeting},
		{"HELLO", Greeting},
		{"Say hello in Python", Greeting},
		{"How do I sort a list in python?", Technical},
		{"PYTHON decorators", Technical},
		{"What is the weather like?", General},
		{"", General},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestIntentGraph(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		path        []string
		reply       string
		modelCalled bool
	}{
		{
			name:  "greeting",
			input: "hello!",
			path:  []string{NodeClassifier, NodeGreeting},
			reply: GreetingReply,
		},
		{
			name:        "technical",
			input:       "explain python generators",
			path:        []string{NodeClassifier, NodeTechnical},
			reply:       "Generators yield values lazily.",
			modelCalled: true,
		},
		{
			name:  "general",
			input: "tell me a story",
			path:  []string{NodeClassifier, NodeGeneral},
			reply: GeneralReply,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := llm.NewMockClient("Generators yield values lazily.")
			graph, err := New(client)
			require.NoError(t, err)

			var path []string
			result, err := graph.Invoke(chatgraph.NewContext(context.Background()), NewState(tc.input),
				chatgraph.WithStepHook(func(_ int, nodeID string) { path = append(path, nodeID) }))
			require.NoError(t, err)

			assert.Equal(t, tc.path, path)
			assert.Equal(t, tc.name, string(result.Intent))
			assert.Equal(t, tc.reply, llm.LastContent(result.Messages))
			assert.Len(t, result.Messages, 2)
			assert.Equal(t, tc.modelCalled, client.CallCount() > 0)
		})
	}
}

func TestIntentGraph_Routes(t *testing.T) {
	graph, err := New(llm.NewMockClient(""))
	require.NoError(t, err)

	assert.True(t, graph.IsConditional(NodeClassifier))
	assert.Equal(t, map[chatgraph.Label]string{
		Greeting:  NodeGreeting,
		Technical: NodeTechnical,
		General:   NodeGeneral,
	}, graph.Routes(NodeClassifier))
}

func TestIntentGraph_RejectsEmptyConversation(t *testing.T) {
	graph, err := New(llm.NewMockClient(""))
	require.NoError(t, err)

	_, err = graph.Invoke(chatgraph.NewContext(context.Background()), State{})
	var verr *chatgraph.StateValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
