// Package workflows names the chat workflows the CLI can run.
package workflows

import (
	"github.com/randalmurphal/chatgraph/internal/hotel"
	"github.com/randalmurphal/chatgraph/internal/workflows/booking"
	"github.com/randalmurphal/chatgraph/internal/workflows/chatbot"
	"github.com/randalmurphal/chatgraph/internal/workflows/intent"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/registry"
)

// DefaultWorkflow is run when none is chosen.
const DefaultWorkflow = "chatbot"

// Runner answers one line of user input.
type Runner interface {
	// Run walks the workflow for input and returns the final reply.
	Run(ctx chatgraph.Context, input string, opts ...chatgraph.RunOption) (string, error)
}

// Deps are the collaborators a workflow may need.
type Deps struct {
	Client         llm.Client
	Inventory      hotel.Inventory
	CompileOptions []chatgraph.CompileOption
}

// Factory builds a Runner from Deps.
type Factory struct {
	Description string
	New         func(deps Deps) (Runner, error)
}

// Catalog maps workflow names to factories.
type Catalog = registry.Registry[string, Factory]

// mustAdd registers a built-in workflow. Names are fixed at compile time,
// so a duplicate is a programming error.
func mustAdd(c *Catalog, name string, f Factory) {
	if err := c.Add(name, f); err != nil {
		panic(err)
	}
}

// NewCatalog returns a catalog holding the built-in workflows.
func NewCatalog() *Catalog {
	c := registry.New[string, Factory]()
	mustAdd(c, "chatbot", Factory{
		Description: "send the message to the model and print its reply",
		New: func(d Deps) (Runner, error) {
			g, err := chatbot.New(d.Client, d.CompileOptions...)
			if err != nil {
				return nil, err
			}
			return &graphRunner[chatbot.State]{
				graph:    g,
				initial:  chatbot.NewState,
				messages: func(s chatbot.State) []llm.Message { return s.Messages },
			}, nil
		},
	})
	mustAdd(c, "intent", Factory{
		Description: "route greetings, Python questions and everything else to different handlers",
		New: func(d Deps) (Runner, error) {
			g, err := intent.New(d.Client, d.CompileOptions...)
			if err != nil {
				return nil, err
			}
			return &graphRunner[intent.State]{
				graph:    g,
				initial:  intent.NewState,
				messages: func(s intent.State) []llm.Message { return s.Messages },
			}, nil
		},
	})
	mustAdd(c, "booking", Factory{
		Description: "extract a hotel booking request and confirm it against the inventory",
		New: func(d Deps) (Runner, error) {
			g, err := booking.New(d.Client, d.Inventory, d.CompileOptions...)
			if err != nil {
				return nil, err
			}
			return &graphRunner[booking.State]{
				graph:    g,
				initial:  booking.NewState,
				messages: func(s booking.State) []llm.Message { return s.Messages },
			}, nil
		},
	})
	return c
}

// graphRunner adapts a compiled graph with a message list to Runner.
type graphRunner[S any] struct {
	graph    *chatgraph.CompiledGraph[S]
	initial  func(input string) S
	messages func(S) []llm.Message
}

func (r *graphRunner[S]) Run(ctx chatgraph.Context, input string, opts ...chatgraph.RunOption) (string, error) {
	final, err := r.graph.Invoke(ctx, r.initial(input), opts...)
	if err != nil {
		return "", err
	}
	return llm.LastContent(r.messages(final)), nil
}
