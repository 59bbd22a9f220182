package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gosuri/uiprogress"

	"github.com/MrWong99/humanizer/internal/app"
	"github.com/MrWong99/humanizer/internal/config"
	"github.com/MrWong99/humanizer/internal/humanize"
	"github.com/MrWong99/humanizer/internal/server"
	"github.com/MrWong99/humanizer/pkg/nlp/segment"
	"github.com/MrWong99/humanizer/pkg/nlp/tokenize"
)

// input is one document to process.
type input struct {
	name string
	text string
}

// buildHumanizer assembles a humanizer the way the server does. The returned
// close func releases the providers.
func buildHumanizer(ctx context.Context, configPath string, lite bool) (*humanize.Humanizer, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, nil, err
		}
	}
	if lite {
		cfg.Server.Variant = config.VariantLite
	}

	var providers *app.Providers
	if cfg.Server.Variant == config.VariantFull {
		reg := config.NewRegistry()
		app.RegisterBuiltinProviders(reg)
		var err error
		if providers, err = app.BuildProviders(ctx, cfg, reg, nil); err != nil {
			return nil, nil, err
		}
	}
	closeFn := func() {
		if providers != nil {
			_ = providers.Close()
		}
	}

	h, err := app.BuildHumanizer(cfg, providers, nil)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return h, closeFn, nil
}

// readInputs reads every file, or ui.In when files is empty.
func readInputs(files []string, ui UI) ([]input, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(ui.In)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []input{{name: "-", text: string(data)}}, nil
	}
	out := make([]input, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, input{name: f, text: string(data)})
	}
	return out, nil
}

func textCommand(ctx context.Context, opts TextOptions, ui UI) error {
	inputs, err := readInputs(opts.Files, ui)
	if err != nil {
		return err
	}
	h, closeFn, err := buildHumanizer(ctx, opts.ConfigPath, opts.Lite)
	if err != nil {
		return err
	}
	defer closeFn()

	// Results are printed after the bar stops so the two never interleave.
	var bar *uiprogress.Bar
	var progress *uiprogress.Progress
	if len(inputs) > 1 {
		progress = uiprogress.New()
		progress.SetOut(ui.Err)
		progress.Start()
		bar = progress.AddBar(len(inputs)).AppendCompleted().PrependElapsed()
	}

	results := make([]server.HumanizeResponse, 0, len(inputs))
	for _, in := range inputs {
		resp, err := server.Process(ctx, h, server.HumanizeRequest{
			Text:        in.text,
			UsePassive:  opts.Passive,
			UseSynonyms: opts.Synonyms,
			Seed:        opts.Seed,
		}, opts.Debug)
		if err != nil {
			if progress != nil {
				progress.Stop()
			}
			return fmt.Errorf("%s: %w", in.name, err)
		}
		results = append(results, resp)
		if bar != nil {
			bar.Incr()
		}
	}
	if progress != nil {
		progress.Stop()
	}

	for i, resp := range results {
		if len(inputs) > 1 {
			fmt.Fprintf(ui.Out, "==> %s <==\n", filepath.Base(inputs[i].name))
		}
		if opts.JSON {
			enc := json.NewEncoder(ui.Out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(ui.Out, resp.HumanizedText)
	}
	return nil
}

func countCommand(opts CountOptions, ui UI) error {
	inputs, err := readInputs(opts.Files, ui)
	if err != nil {
		return err
	}
	var counter humanize.Counter = humanize.TokenCounter{Tokenizer: tokenize.New(), Segmenter: segment.New()}
	if opts.Lite {
		counter = humanize.RegexCounter{}
	}
	for _, in := range inputs {
		fmt.Fprintf(ui.Out, "%d words, %d sentences\t%s\n", counter.Words(in.text), counter.Sentences(in.text), in.name)
	}
	return nil
}
