package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agenthands/persona/internal/app"
	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/aggregate"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/core/normalize"
	"github.com/agenthands/persona/internal/core/rag"
	"github.com/agenthands/persona/internal/platform/logger"
)

const usage = `usage: persona [-config path] <command> [flags]

commands:
  analyze -in export.json [-out dir] [-report=true]
  index   -persona user_persona.json
  ask     -user name -q "question" [-k 3] [-community name] [-kind record]
`

// usageError marks failures caused by how the command was invoked.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue), errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	case model.IsUserError(err), errors.Is(err, fs.ErrNotExist):
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("persona", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	cfgPath := global.String("config", envOr("CONFIG_PATH", "config/config.toml"), "path to config.toml")
	if err := global.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if global.NArg() == 0 {
		return usageError{"missing command"}
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "analyze":
		return analyze(ctx, cfg, log, rest, stdout)
	case "index":
		return indexPersona(ctx, cfg, log, rest, stdout)
	case "ask":
		return ask(ctx, cfg, log, rest, stdout)
	default:
		return usageError{fmt.Sprintf("unknown command %q", cmd)}
	}
}

func analyze(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	in := flags.String("in", "", "raw activity export (JSON)")
	out := flags.String("out", cfg.Pipeline.OutputDir, "output directory")
	report := flags.Bool("report", cfg.Pipeline.Report, "write a text report")
	if err := flags.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if *in == "" {
		return usageError{"analyze: -in is required"}
	}

	export, err := normalize.LoadExport(*in)
	if err != nil {
		return err
	}
	a, err := app.Build(ctx, cfg, log, app.Needs{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)
	a.Engine.Report = *report

	res, err := a.Engine.RunUser(ctx, export, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "persona for u/%s (%s) written to %s\n", res.Persona.UserID, res.Persona.MBTIType, res.Path)
	if res.ReportPath != "" {
		fmt.Fprintf(stdout, "report written to %s\n", res.ReportPath)
	}
	return nil
}

func indexPersona(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("index", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	path := flags.String("persona", "", "persona JSON written by analyze")
	if err := flags.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if *path == "" {
		return usageError{"index: -persona is required"}
	}

	persona, err := aggregate.Load(*path)
	if err != nil {
		return err
	}
	a, err := app.Build(ctx, cfg, log, app.Needs{Index: true})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	stats, err := a.Engine.Index(ctx, persona)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "indexed %d fragments for u/%s with %s\n", stats.Fragments, stats.UserID, stats.Embedder)
	return nil
}

func ask(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("ask", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	user := flags.String("user", "", "user id")
	question := flags.String("q", "", "question")
	k := flags.Int("k", cfg.Query.TopK, "fragments to retrieve")
	community := flags.String("community", "", "restrict to one community")
	kind := flags.String("kind", "", "restrict to one fragment kind")
	asJSON := flags.Bool("json", false, "print the answer and fragments as JSON")
	if err := flags.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if *user == "" || *question == "" {
		return usageError{"ask: -user and -q are required"}
	}

	a, err := app.Build(ctx, cfg, log, app.Needs{Query: true})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	ans, err := a.Engine.Ask(ctx, rag.Query{
		UserID:   *user,
		Question: *question,
		TopK:     *k,
		Filter:   model.FragmentFilter{Community: *community, Kind: model.FragmentKind(*kind)},
	})
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}
	fmt.Fprintln(stdout, ans.Text)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
