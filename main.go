package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/Yamashou/refgen/internal/log"
)

const version = "0.3.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config string `help:"Config file. Default: the first of .refgen.yml, refgen.yml, .refgen.yaml, refgen.yaml in the working directory" type:"path" env:"REFGEN_CONFIG"`
	Log    struct {
		Level string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"REFGEN_LOG_LEVEL"`
		File  string `help:"Write logs to this file instead of stdout and stderr" type:"path" env:"REFGEN_LOG_FILE"`
	} `embed:"" prefix:"log-"`
}

type CLI struct {
	Globals

	Generate Generate `cmd:"" default:"withargs" help:"Generate reference holders, binders and assets for marked types."`
	Init     Init     `cmd:"" help:"Write a default config and the runtime base types."`
	Version  Version  `cmd:"" help:"Print the version."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("refgen"),
		kong.Description("Generates Unity ScriptableObject reference holders and binders for marked components."),
		kong.UsageOnError(),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Bind(logger, &cli.Globals)
	ctx.BindTo(runCtx, (*context.Context)(nil))

	if err := ctx.Run(); err != nil {
		fatal(os.Stderr, logger, cli.Log.File, err)
		stop()
		for _, c := range closeFiles {
			_ = c.Close()
		}
		os.Exit(1)
	}
}

// fatal logs err and also prints it to stderr when logs go to a file.
func fatal(stderr io.Writer, logger *slog.Logger, logFile string, err error) {
	logger.Error(err.Error())
	if logFile != "" {
		_, _ = fmt.Fprintf(stderr, "refgen: %v\n", err)
	}
}
