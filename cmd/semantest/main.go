// Command semantest drives a Semantest server from the terminal: health
// probes, single event dispatch, full ChatGPT workflows, and training mode.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/semantest/go.client/internal/infra/config"
	"github.com/semantest/go.client/internal/infra/logger"
	"github.com/semantest/go.client/internal/infra/tracer"
	"github.com/semantest/go.client/internal/transport"
	"github.com/semantest/go.client/pkg/client"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		fmt.Fprintln(os.Stderr, "missing command\n\nRun 'semantest --help' for usage information.")
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "ping":
		err = runPing(args)
	case "prompt":
		err = runPrompt(args)
	case "workflow":
		err = runWorkflow(args)
	case "train":
		err = runTrain(args)
	case "journal":
		err = runJournal(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'semantest --help' for usage information.\n", cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`semantest - drive a browser extension through a Semantest server

USAGE:
    semantest COMMAND [FLAGS]

COMMANDS:
    ping        Probe the server health endpoint
    prompt      Submit a single prompt to the active tab
    workflow    Run a full ChatGPT workflow (project, chat, prompt, response)
    train       Enable training mode for a website
    journal     Show recent dispatches from the local journal

FLAGS (all commands):
    -config PATH    Config file (default: semantest.yaml)

Environment variables use the SEMANTEST_ prefix and override the file,
e.g. SEMANTEST_BASE_URL, SEMANTEST_API_KEY, SEMANTEST_EXTENSION_ID.
A .env file in the working directory is loaded when present.`)
}

// env holds everything a subcommand needs after bootstrap.
type env struct {
	ctx     context.Context
	cfg     *config.Config
	log     *slog.Logger
	client  *client.Client
	journal *transport.Journal

	cleanup []func()
}

func (e *env) close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
}

// bootstrap loads configuration, wires logging and tracing, and builds the
// client shared by every subcommand.
func bootstrap(fs *flag.FlagSet, args []string) (*env, error) {
	configPath := fs.String("config", "semantest.yaml", "config file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Optional; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	e.ctx = ctx
	e.cleanup = append(e.cleanup, stop)

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		e.close()
		return nil, err
	}
	e.log = log
	e.cleanup = append(e.cleanup, func() { _ = closeLog() })

	shutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		e.close()
		return nil, err
	}
	e.cleanup = append(e.cleanup, func() { _ = shutdown(context.Background()) })

	opts := []client.Option{client.WithLogger(log)}

	if cfg.Journal.Enabled {
		j, err := transport.OpenJournal(cfg.Journal.Path)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		e.journal = j
		e.cleanup = append(e.cleanup, func() { _ = j.Close() })
		opts = append(opts, client.WithJournal(j))
	}

	if cfg.Stream.URL != "" {
		// Closed by the client, which owns the waiter it is given.
		w, err := transport.NewSocketWaiter(ctx, cfg.Stream.URL, log)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("connect response stream: %w", err)
		}
		opts = append(opts, client.WithWaiter(w))
	}

	e.client = client.NewWithConfig(cfg.Client, opts...)
	e.cleanup = append(e.cleanup, func() { _ = e.client.Close() })
	return e, nil
}

func runPing(args []string) error {
	fs := flag.NewFlagSet("ping", flag.ExitOnError)
	e, err := bootstrap(fs, args)
	if err != nil {
		return err
	}
	defer e.close()

	result := e.client.Ping(e.ctx)
	if !result.Success {
		return fmt.Errorf("server unreachable after %s", result.Latency)
	}
	fmt.Printf("ok (%s)\n", result.Latency)
	return nil
}

func runPrompt(args []string) error {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	text := fs.String("text", "", "prompt text to submit (required)")
	selector := fs.String("selector", "", "input selector override")
	e, err := bootstrap(fs, args)
	if err != nil {
		return err
	}
	defer e.close()

	if *text == "" {
		return fmt.Errorf("-text is required")
	}

	resp, err := e.client.RequestPromptSubmission(e.ctx, e.cfg.Extension.ID, e.cfg.Extension.TabID, *text, *selector)
	if err != nil {
		return err
	}
	if resp.Failed() {
		return fmt.Errorf("prompt submission failed: %s", resp.Reason)
	}
	return printJSON(resp)
}

func runWorkflow(args []string) error {
	fs := flag.NewFlagSet("workflow", flag.ExitOnError)
	project := fs.String("project", "", "project name (required)")
	chat := fs.String("chat", "", "chat title (optional)")
	text := fs.String("text", "", "prompt text (required)")
	e, err := bootstrap(fs, args)
	if err != nil {
		return err
	}
	defer e.close()

	if *project == "" || *text == "" {
		return fmt.Errorf("-project and -text are required")
	}

	results, err := e.client.ExecuteFullChatGPTWorkflow(e.ctx, e.cfg.Extension.ID, e.cfg.Extension.TabID, client.Workflow{
		ProjectName: *project,
		ChatTitle:   *chat,
		PromptText:  *text,
	})
	if err != nil {
		var werr *client.WorkflowError
		if errors.As(err, &werr) {
			e.log.Error("workflow failed",
				"step", werr.Step,
				"completed", len(werr.Partial),
			)
			_ = printJSON(werr.Partial)
		}
		return err
	}
	return printJSON(results)
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	website := fs.String("website", "chatgpt.com", "website to enable training for")
	e, err := bootstrap(fs, args)
	if err != nil {
		return err
	}
	defer e.close()

	resp, err := e.client.RequestTrainingMode(e.ctx, *website)
	if err != nil {
		return err
	}
	return printJSON(resp.Training)
}

func runJournal(args []string) error {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of entries to show")
	e, err := bootstrap(fs, args)
	if err != nil {
		return err
	}
	defer e.close()

	if e.journal == nil {
		return fmt.Errorf("journal is disabled; enable it in the config file")
	}
	entries, err := e.journal.Recent(e.ctx, *limit)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%s  %-16s %-8s %s %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Action,
			entry.Outcome,
			entry.CorrelationID,
			entry.Detail,
		)
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
