package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/internal/log"
)

// cli is the top-level command line.
type cli struct {
	Log logConfig `embed:"" group:"log" prefix:"log-"`

	Eval     evalCmd     `cmd:"" default:"withargs" help:"Evaluate expressions in order, sharing definitions."`
	Notebook notebookCmd `cmd:"" help:"Evaluate a YAML notebook as a workspace."`
}

type logConfig struct {
	Level      string `default:"warn"    enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format     string `default:"text"    enum:"text,json"                   help:"Set log format."`
	TimeLayout string `default:"RFC3339"                                    help:"Set timestamp format."`
	Caller     bool   `default:"false"                                      help:"Include caller information." negatable:""`
	File       string `type:"path"                                          help:"Append logs to a file instead of standard error."`
}

// logger creates the logger the flags describe. Logs go to w unless a log
// file is named. The returned function closes the log file.
func (c logConfig) logger(w io.Writer) (log.Logger, func() error, error) {
	opts := []log.Option{
		log.WithLevel(log.ParseLevel(c.Level)),
		log.WithFormat(log.ParseFormat(c.Format)),
		log.WithTimeLayout(c.TimeLayout),
		log.WithCaller(c.Caller),
	}
	closer := func() error { return nil }
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return log.Logger{}, nil, err
		}
		opts = append(opts, log.WithOutput(f))
		closer = f.Close
	}
	return log.Make(w, opts...), closer, nil
}

// env is what commands need from the process.
type env struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	log    log.Logger
}

// errFailed reports that at least one expression did not evaluate.
var errFailed = mathexpr.NewError("evaluation failed")

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, exit func(int), args ...string) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("mathexpr"),
		kong.Description("Evaluate arbitrary-precision math expressions."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		return err
	}
	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	l, closer, err := c.Log.logger(stderr)
	if err != nil {
		return err
	}
	defer closer()
	l.Debug("starting", slog.String("command", ktx.Command()))
	err = ktx.Run(&env{ctx: ctx, stdin: stdin, stdout: stdout, log: l})
	if err != nil {
		l.ErrorContext(ctx, "run failed", slog.Any("error", err))
	}
	return err
}
