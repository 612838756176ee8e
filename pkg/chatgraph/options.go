package chatgraph

import (
	"log/slog"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
)

// DefaultMaxSteps is the step bound applied when no CompileOption changes it.
const DefaultMaxSteps = 1000

// compileConfig holds configuration for Compile.
type compileConfig struct {
	name          string
	maxSteps      int
	validateState bool
	logger        *slog.Logger
	err           error
}

func defaultCompileConfig() compileConfig {
	return compileConfig{
		name:     "chatgraph",
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
}

// CompileOption configures compilation.
type CompileOption func(*compileConfig)

// WithMaxSteps sets the maximum number of node executions per Invoke.
// Default: 1000. Exceeding it fails the run with *StepLimitExceededError.
// A non-positive n makes Compile fail with ErrInvalidMaxSteps.
func WithMaxSteps(n int) CompileOption {
	return func(c *compileConfig) {
		if n <= 0 {
			c.err = ErrInvalidMaxSteps
			return
		}
		c.maxSteps = n
	}
}

// WithoutStepLimit removes the step bound. A cyclic graph whose router
// never reaches END will then run until its context is cancelled.
func WithoutStepLimit() CompileOption {
	return func(c *compileConfig) {
		c.maxSteps = 0
	}
}

// WithStateValidation validates the initial state and every state a node
// returns against the `validate` struct tags of S.
// S must be a struct or a pointer to one.
func WithStateValidation() CompileOption {
	return func(c *compileConfig) {
		c.validateState = true
	}
}

// WithCompileLogger sets the logger used for compile-time warnings.
// Default: slog.Default().
func WithCompileLogger(logger *slog.Logger) CompileOption {
	return func(c *compileConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName names the graph in logs and trace spans.
func WithName(name string) CompileOption {
	return func(c *compileConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// StepHook observes the walk. It is called after each node completes,
// with the 1-based step number and the node ID.
type StepHook func(step int, nodeID string)

// runConfig holds configuration for graph execution.
type runConfig struct {
	runID    string
	logger   *slog.Logger
	metrics  bool
	tracing  bool
	stepHook StepHook
}

// observabilityOptions translates the run options into the signals a run emits.
func (c runConfig) observabilityOptions() observability.Options {
	opts := observability.Options{Logger: c.logger}
	if c.metrics {
		opts.Metrics = observability.NewMetricsRecorder()
	}
	if c.tracing {
		opts.Spans = observability.NewSpanManager()
	}
	return opts
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithRunID overrides the run identifier taken from the Context.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithObservabilityLogger enables run and node lifecycle logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	result, err := compiled.Invoke(ctx, state, chatgraph.WithObservabilityLogger(logger))
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		c.metrics = enabled
	}
}

// WithTracing enables OpenTelemetry spans through the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracing = enabled
	}
}

// WithStepHook registers a hook called after every successful node.
func WithStepHook(hook StepHook) RunOption {
	return func(c *runConfig) {
		c.stepHook = hook
	}
}
