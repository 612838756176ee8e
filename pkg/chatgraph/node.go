package chatgraph

// END is the terminal marker.
// Use it as an edge or route destination to end the walk.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and current state,
// and return the replacement state and any error.
//
// The state parameter is passed by value. Nodes should modify and return
// a new state value, not rely on pointer mutation.
//
// Example:
//
//	func classify(ctx chatgraph.Context, s State) (State, error) {
//	    s.Intent = "greeting"
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// Label is the value a router returns to pick a route.
type Label string

// RouterFunc picks a label from the current state.
// The label is looked up in the route table declared with AddConditionalEdges.
//
// Example:
//
//	func route(ctx chatgraph.Context, s State) chatgraph.Label {
//	    return chatgraph.Label(s.Intent)
//	}
type RouterFunc[S any] func(ctx Context, state S) Label

// conditionalEdge is a router plus its label -> destination table.
type conditionalEdge[S any] struct {
	router RouterFunc[S]
	routes map[Label]string
	labels []Label
}
