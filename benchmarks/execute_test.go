package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/chatgraph/internal/hotel"
	"github.com/randalmurphal/chatgraph/internal/workflows/booking"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

func BenchmarkInvoke_Linear(b *testing.B) {
	for _, n := range []int{5, 10, 50, 100} {
		b.Run(nodeCount(n), func(b *testing.B) {
			compiled := mustCompile(b, buildLinearGraph(b, n))
			ctx := chatgraph.NewContext(context.Background())
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = compiled.Invoke(ctx, State{})
			}
		})
	}
}

// BenchmarkInvoke_Branching runs a graph with conditional edges.
func BenchmarkInvoke_Branching(b *testing.B) {
	compiled := mustCompile(b, buildBranchingGraph(b))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Invoke(ctx, State{Value: i})
	}
}

// BenchmarkInvoke_Loop runs a graph that loops until Value reaches 10.
func BenchmarkInvoke_Loop(b *testing.B) {
	compiled := mustCompile(b, buildLoopGraph(b, 10))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Invoke(ctx, State{})
	}
}

// BenchmarkInvoke_Booking runs the booking workflow against a mock model.
func BenchmarkInvoke_Booking(b *testing.B) {
	client := llm.NewMockClient(`{"intent":"book_hotel","city":"Mumbai","date":"tomorrow","room_type":"deluxe"}`)
	compiled, err := booking.New(client, hotel.NewMemoryInventory(), chatgraph.WithCompileLogger(quiet))
	if err != nil {
		b.Fatal(err)
	}
	ctx := chatgraph.NewContext(context.Background(), chatgraph.WithLogger(quiet))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Invoke(ctx, booking.NewState("Book deluxe room in Mumbai for tomorrow"))
	}
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	bg := context.Background()
	for i := 0; i < b.N; i++ {
		chatgraph.NewContext(bg)
	}
}

// Helper functions

func mustCompile(b *testing.B, g *chatgraph.Graph[State]) *chatgraph.CompiledGraph[State] {
	b.Helper()
	compiled, err := g.Compile(chatgraph.WithCompileLogger(quiet))
	if err != nil {
		b.Fatal(err)
	}
	return compiled
}

func buildLoopGraph(b *testing.B, iterations int) *chatgraph.Graph[State] {
	loopNode := func(ctx chatgraph.Context, s State) (State, error) {
		s.Value++
		return s, nil
	}
	router := func(ctx chatgraph.Context, s State) chatgraph.Label {
		if s.Value >= iterations {
			return "done"
		}
		return "loop"
	}

	graph := chatgraph.NewGraph[State]()
	must(b,
		graph.AddNode("loop", loopNode),
		graph.AddNode("done", noopNode),
		graph.SetEntry("loop"),
		graph.AddConditionalEdges("loop", router, map[chatgraph.Label]string{
			"loop": "loop",
			"done": "done",
		}),
		graph.AddEdge("done", chatgraph.END),
	)
	return graph
}
