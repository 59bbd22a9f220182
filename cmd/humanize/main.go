// Command humanize runs the humanizer from the terminal: one-shot over stdin
// or files, as an interactive prompt, or to load lexicon and vector data into
// Postgres.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// UI contains the streams the commands read from and write to. Tests inject
// buffers.
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, os.Args[1:], ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "humanize: %v\n", err)
}

func runCommand(ctx context.Context, args []string, ui UI) error {
	cmd := "text"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help":
		printUsage(ui.Out)
		return nil

	case "text":
		opts, err := parseTextArgs(args, ui)
		if err != nil {
			return err
		}
		return textCommand(ctx, opts, ui)

	case "count":
		opts, err := parseCountArgs(args, ui)
		if err != nil {
			return err
		}
		return countCommand(opts, ui)

	case "repl":
		opts, err := parseTextArgs(args, ui)
		if err != nil {
			return err
		}
		return replCommand(ctx, opts, ui)

	case "import-lexicon":
		opts, err := parseImportLexiconArgs(args, ui)
		if err != nil {
			return err
		}
		return importLexiconCommand(ctx, opts, ui)

	case "import-vectors":
		opts, err := parseImportVectorsArgs(args, ui)
		if err != nil {
			return err
		}
		return importVectorsCommand(ctx, opts, ui)

	default:
		printUsage(ui.Err)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: humanize [command] [flags] [file...]

Commands:
  text             humanize stdin or the given files (default)
  count            count words and sentences
  repl             humanize lines typed at an interactive prompt
  import-lexicon   load a YAML thesaurus into Postgres
  import-vectors   load word vectors (GloVe text format) into Postgres
  help             show this help

Run "humanize <command> -h" for the flags of a command.
`)
}
