package main

import (
	"errors"
	"flag"
	"strconv"
)

// TextOptions configures the text and repl commands.
type TextOptions struct {
	ConfigPath string
	Lite       bool
	Synonyms   bool
	Passive    bool
	Debug      bool
	JSON       bool
	Seed       *uint64 // nil = not set
	Files      []string
}

// CountOptions configures the count command.
type CountOptions struct {
	Lite  bool
	Files []string
}

// ImportLexiconOptions configures the import-lexicon command.
type ImportLexiconOptions struct {
	DSN       string
	Source    string
	BatchSize int
	Files     []string
}

// ImportVectorsOptions configures the import-vectors command.
type ImportVectorsOptions struct {
	DSN        string
	Model      string
	Dimensions int
	File       string
}

func newFlagSet(name string, ui UI) *flag.FlagSet {
	fs := flag.NewFlagSet("humanize "+name, flag.ContinueOnError)
	fs.SetOutput(ui.Err)
	return fs
}

func parseTextArgs(args []string, ui UI) (TextOptions, error) {
	var opts TextOptions
	fs := newFlagSet("text", ui)
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file (built-in defaults when empty)")
	fs.BoolVar(&opts.Lite, "lite", false, "use the lite variant (no synonyms)")
	fs.BoolVar(&opts.Synonyms, "synonyms", false, "enable synonym substitution")
	fs.BoolVar(&opts.Passive, "passive", false, "request passive-voice conversion (accepted and ignored)")
	fs.BoolVar(&opts.Debug, "debug", false, "include the list of changes (implies -json)")
	fs.BoolVar(&opts.JSON, "json", false, "print the full response as JSON")
	fs.Func("seed", "seed for reproducible output", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		opts.Seed = &v
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Debug {
		opts.JSON = true
	}
	opts.Files = fs.Args()
	return opts, nil
}

func parseCountArgs(args []string, ui UI) (CountOptions, error) {
	var opts CountOptions
	fs := newFlagSet("count", ui)
	fs.BoolVar(&opts.Lite, "lite", false, "count with the lite regex counter")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func parseImportLexiconArgs(args []string, ui UI) (ImportLexiconOptions, error) {
	var opts ImportLexiconOptions
	fs := newFlagSet("import-lexicon", ui)
	fs.StringVar(&opts.DSN, "dsn", "", "Postgres connection string (required)")
	fs.StringVar(&opts.Source, "source", "", "source label stored with each synset (default: the file name)")
	fs.IntVar(&opts.BatchSize, "batch", 500, "synsets per transaction")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	if opts.DSN == "" {
		return opts, errors.New("import-lexicon: -dsn is required")
	}
	if len(opts.Files) == 0 {
		return opts, errors.New("import-lexicon: no thesaurus file given")
	}
	if opts.BatchSize <= 0 {
		return opts, errors.New("import-lexicon: -batch must be positive")
	}
	return opts, nil
}

func parseImportVectorsArgs(args []string, ui UI) (ImportVectorsOptions, error) {
	var opts ImportVectorsOptions
	fs := newFlagSet("import-vectors", ui)
	fs.StringVar(&opts.DSN, "dsn", "", "Postgres connection string (required)")
	fs.StringVar(&opts.Model, "model", "", "model id the vectors are stored under (required)")
	fs.IntVar(&opts.Dimensions, "dims", 300, "vector length")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch {
	case opts.DSN == "":
		return opts, errors.New("import-vectors: -dsn is required")
	case opts.Model == "":
		return opts, errors.New("import-vectors: -model is required")
	case fs.NArg() != 1:
		return opts, errors.New("import-vectors: exactly one vector file is required")
	case opts.Dimensions <= 0:
		return opts, errors.New("import-vectors: -dims must be positive")
	}
	opts.File = fs.Arg(0)
	return opts, nil
}
