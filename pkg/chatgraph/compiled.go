package chatgraph

import (
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"
)

// CompiledGraph is the executable form of a Graph, produced by Compile.
// Its tables are never written after compilation, so Invoke may be called
// from many goroutines at once.
type CompiledGraph[S any] struct {
	name             string
	nodes            map[string]NodeFunc[S]
	edges            map[string]string
	conditionalEdges map[string]conditionalEdge[S]
	entryPoint       string
	maxSteps         int
	validate         *validator.Validate

	successors   map[string][]string
	predecessors map[string][]string
}

// Name returns the graph name set with WithName.
func (cg *CompiledGraph[S]) Name() string {
	return cg.name
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entryPoint
}

// MaxSteps returns the step bound, or 0 when the walk is unbounded.
func (cg *CompiledGraph[S]) MaxSteps() int {
	return cg.maxSteps
}

// NodeIDs returns all node identifiers in the graph, sorted.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	return slices.Sorted(maps.Keys(cg.nodes))
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns every destination reachable in one step from the
// given node: the unconditional target or all route destinations.
// Returns nil for END or unknown nodes.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return slices.Clone(cg.successors[id])
}

// Predecessors returns the node IDs that have edges or routes to the given node.
func (cg *CompiledGraph[S]) Predecessors(id string) []string {
	return slices.Clone(cg.predecessors[id])
}

// IsConditional returns true if the node has a conditional edge.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	_, exists := cg.conditionalEdges[id]
	return exists
}

// Routes returns a copy of the label -> destination table of a
// conditional node, or nil if the node has none.
func (cg *CompiledGraph[S]) Routes(id string) map[Label]string {
	ce, exists := cg.conditionalEdges[id]
	if !exists {
		return nil
	}
	return maps.Clone(ce.routes)
}

// getNode returns the node function for the given ID.
func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, exists := cg.nodes[id]
	return fn, exists
}
