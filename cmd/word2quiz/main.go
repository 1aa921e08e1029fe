// Command word2quiz converts formatted quiz documents into validated
// multiple-choice sections.
//
// Usage:
//
//	word2quiz parse   [flags] week1.docx    # print the result as JSON
//	word2quiz preview [flags] week1.docx    # classification table + Markdown
//	word2quiz save    [flags] week1.docx    # parse and store a run
//	word2quiz runs    [-limit N]            # list stored runs
//	word2quiz run     <id>                  # print a stored run
//	word2quiz mcp                           # MCP server on stdio
//	word2quiz serve   [-addr :8087]         # HTTP API + MCP over HTTP
//
// Common flags: -config word2quiz.yaml, -db path, -log-level debug|info|warn|error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/word2quiz"
	"github.com/hazyhaar/word2quiz/quiz"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "word2quiz %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: word2quiz <parse|preview|save|runs|run|mcp|serve> [flags] [args]")
}

type options struct {
	configPath string
	dbPath     string
	logLevel   string
	expected   int
	fontSize   int
	addr       string
	limit      int
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to word2quiz.yaml config file")
	fs.StringVar(&o.dbPath, "db", "", "path to SQLite run database")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	switch name {
	case "parse", "preview", "save":
		fs.IntVar(&o.expected, "questions", 0, "questions every quiz must have (0 = config)")
		fs.IntVar(&o.fontSize, "fontsize", 0, "normalize question/answer font size to N pt (0 = config)")
	case "runs":
		fs.IntVar(&o.limit, "limit", 20, "max runs to list")
	case "serve":
		fs.StringVar(&o.addr, "addr", "", "HTTP listen address (default from config, :8087)")
	}
	return fs
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(o *options) (*word2quiz.Config, error) {
	cfg := &word2quiz.Config{}
	if o.configPath != "" {
		loaded, err := word2quiz.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.addr != "" {
		cfg.HTTPAddr = o.addr
	}
	return cfg, nil
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "parse", "preview", "save", "runs", "run", "mcp", "serve":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	var o options
	fs := newFlagSet(cmd, &o)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(o.logLevel)
	cfg, err := resolveConfig(&o)
	if err != nil {
		return err
	}
	svc, err := word2quiz.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	opts := quiz.Options{ExpectedQuestions: o.expected, NormalizeFontSize: o.fontSize}

	switch cmd {
	case "parse":
		path, err := oneArg(fs)
		if err != nil {
			return err
		}
		res, err := svc.ParseFile(ctx, path, opts)
		if err != nil {
			return err
		}
		return writeJSON(out, res)

	case "preview":
		path, err := oneArg(fs)
		if err != nil {
			return err
		}
		md, err := svc.Preview(ctx, path, opts)
		fmt.Fprint(out, md)
		return err

	case "save":
		path, err := oneArg(fs)
		if err != nil {
			return err
		}
		r, err := svc.SaveFile(ctx, path, opts)
		if err != nil {
			return err
		}
		r.Result = nil
		return writeJSON(out, r)

	case "runs":
		runs, err := svc.Runs(ctx, o.limit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %-30s  %d sections  %d questions\n",
				r.ID, time.UnixMilli(r.CreatedAt).Format(time.DateTime), r.Source, r.SectionCount, r.QuestionCount)
		}
		return nil

	case "run":
		id, err := oneArg(fs)
		if err != nil {
			return err
		}
		r, err := svc.Run(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("run %s not found", id)
		}
		return writeJSON(out, r)

	case "mcp":
		logger.Info("word2quiz: MCP on stdio")
		return newMCPServer(svc).Run(ctx, &mcp.StdioTransport{})

	case "serve":
		return serve(ctx, svc, logger)
	}
	return nil
}

func newMCPServer(svc *word2quiz.Service) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "word2quiz", Version: version}, nil)
	svc.RegisterMCP(srv)
	return srv
}

func serve(ctx context.Context, svc *word2quiz.Service, logger *slog.Logger) error {
	mcpSrv := newMCPServer(svc)

	r := chi.NewRouter()
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
	r.Mount("/", svc.Handler())

	addr := svc.Config().HTTPAddr
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("word2quiz: listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("word2quiz: stopped")
	return nil
}

func oneArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one argument, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
