package chatgraph

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Compile validates the graph and creates an executable CompiledGraph.
//
// Edge destinations were already validated when they were declared, so
// the only hard requirement left is an entry point. Unreachable nodes
// (not reachable from the entry through any edge or route) are logged as
// warnings but do not cause compilation to fail.
//
// After a successful Compile the builder is frozen.
func (g *Graph[S]) Compile(opts ...CompileOption) (*CompiledGraph[S], error) {
	cfg := defaultCompileConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.entryPoint == "" {
		return nil, ErrNoEntryPoint
	}

	var validate *validator.Validate
	if cfg.validateState {
		if err := checkValidatableState[S](); err != nil {
			return nil, err
		}
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	g.warnUnreachableNodes(cfg.logger)

	compiled := g.buildCompiledGraph(cfg)
	compiled.validate = validate
	g.compiled = true
	return compiled, nil
}

// checkValidatableState rejects state types the validator cannot walk.
func checkValidatableState[S any]() error {
	t := reflect.TypeOf((*S)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("state validation requires a struct state, got %s", t)
	}
	return nil
}

// warnUnreachableNodes logs warnings for nodes not reachable from entry.
func (g *Graph[S]) warnUnreachableNodes(logger *slog.Logger) {
	reachable := g.findReachableNodes()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !reachable[id] {
			logger.Warn("node is unreachable from entry", "node_id", id)
		}
	}
}

// findReachableNodes returns the set of nodes reachable from the entry point.
// Route tables are closed, so conditional edges contribute exactly their
// declared destinations.
func (g *Graph[S]) findReachableNodes() map[string]bool {
	reachable := make(map[string]bool)
	if g.entryPoint == "" {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	visit := func(target string) {
		if target != END && !reachable[target] {
			reachable[target] = true
			queue = append(queue, target)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if to, ok := g.edges[current]; ok {
			visit(to)
		}
		if ce, ok := g.conditionalEdges[current]; ok {
			for _, to := range ce.routes {
				visit(to)
			}
		}
	}

	return reachable
}

// buildCompiledGraph creates the immutable CompiledGraph from the builder state.
func (g *Graph[S]) buildCompiledGraph(cfg compileConfig) *CompiledGraph[S] {
	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	edges := make(map[string]string, len(g.edges))
	for from, to := range g.edges {
		edges[from] = to
	}

	conditionalEdges := make(map[string]conditionalEdge[S], len(g.conditionalEdges))
	for from, ce := range g.conditionalEdges {
		routes := make(map[Label]string, len(ce.routes))
		for label, to := range ce.routes {
			routes[label] = to
		}
		conditionalEdges[from] = conditionalEdge[S]{
			router: ce.router,
			routes: routes,
			labels: append([]Label(nil), ce.labels...),
		}
	}

	// Pre-compute successors and predecessors for introspection
	successors := make(map[string][]string, len(nodes))
	predecessors := make(map[string][]string)
	addLink := func(from, to string) {
		for _, existing := range successors[from] {
			if existing == to {
				return
			}
		}
		successors[from] = append(successors[from], to)
		if to != END {
			predecessors[to] = append(predecessors[to], from)
		}
	}
	for from, to := range edges {
		addLink(from, to)
	}
	for from, ce := range conditionalEdges {
		for _, to := range ce.routes {
			addLink(from, to)
		}
	}
	for id := range successors {
		sort.Strings(successors[id])
	}
	for id := range predecessors {
		sort.Strings(predecessors[id])
	}

	return &CompiledGraph[S]{
		name:             cfg.name,
		nodes:            nodes,
		edges:            edges,
		conditionalEdges: conditionalEdges,
		entryPoint:       g.entryPoint,
		maxSteps:         cfg.maxSteps,
		successors:       successors,
		predecessors:     predecessors,
	}
}
