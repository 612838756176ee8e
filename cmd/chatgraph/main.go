// Command chatgraph reads one line of input and answers it with a chat workflow.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/randalmurphal/chatgraph/internal/hotel"
	"github.com/randalmurphal/chatgraph/internal/workflows"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/config"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

const usage = `chatgraph - answer a chat message with a workflow graph

Usage: chatgraph [flags]

Flags:
`

var (
	errNoInput   = errors.New("no input given")
	errRunFailed = errors.New("the workflow could not produce an answer, see the log for details")
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, newModelClient); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// clientFactory builds the model client from settings.
type clientFactory func(config.ModelSettings) llm.Client

func newModelClient(m config.ModelSettings) llm.Client {
	client := llm.NewOpenAIClient(m.APIKey,
		llm.WithBaseURL(m.BaseURL),
		llm.WithModel(m.Name),
		llm.WithTemperature(m.Temperature),
		llm.WithMaxTokens(m.MaxTokens),
		llm.WithTimeout(m.Timeout),
	)
	return llm.Retrying(client, llm.DefaultRetryPolicy)
}

// run holds the application logic so it can be driven from tests.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, newClient clientFactory) error {
	fs := flag.NewFlagSet("chatgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	workflow := fs.String("workflow", workflows.DefaultWorkflow, "workflow to run (see -list)")
	configPath := fs.String("config", "", "YAML or JSON settings file")
	verbose := fs.Bool("v", false, "print each node as it completes")
	list := fs.Bool("list", false, "list the available workflows and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	catalog := workflows.NewCatalog()
	if *list {
		for name, f := range catalog.All() {
			fmt.Fprintf(stdout, "%-10s %s\n", name, f.Description)
		}
		return nil
	}

	factory, err := catalog.Lookup(*workflow)
	if err != nil {
		return err
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := settings.NewLogger(stderr)

	store, err := hotel.Open(ctx, settings.Inventory.Driver, settings.Inventory.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("inventory unavailable: %w", err)
	}

	compileOpts := []chatgraph.CompileOption{chatgraph.WithCompileLogger(logger)}
	if settings.Run.MaxSteps > 0 {
		compileOpts = append(compileOpts, chatgraph.WithMaxSteps(settings.Run.MaxSteps))
	} else {
		compileOpts = append(compileOpts, chatgraph.WithoutStepLimit())
	}

	runner, err := factory.New(workflows.Deps{
		Client:         newClient(settings.Model),
		Inventory:      store,
		CompileOptions: compileOpts,
	})
	if err != nil {
		return fmt.Errorf("build workflow %q: %w", *workflow, err)
	}

	fmt.Fprint(stdout, "Ask something: ")
	input, err := readLine(stdin)
	if err != nil {
		return err
	}

	runOpts := []chatgraph.RunOption{chatgraph.WithObservabilityLogger(logger)}
	if *verbose || settings.Run.Verbose {
		runOpts = append(runOpts, chatgraph.WithStepHook(func(step int, nodeID string) {
			fmt.Fprintf(stdout, "[%d] %s\n", step, nodeID)
		}))
	}

	reply, err := runner.Run(chatgraph.NewContext(ctx, chatgraph.WithLogger(logger)), input, runOpts...)
	if err != nil {
		logger.Error("workflow failed", "workflow", *workflow, "error", err)
		return errRunFailed
	}

	fmt.Fprintf(stdout, "\n%s\n", reply)
	return nil
}

// readLine returns the first line of r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errNoInput
	}
	return line, nil
}
