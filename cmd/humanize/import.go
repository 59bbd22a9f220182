package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"

	"github.com/MrWong99/humanizer/pkg/lexicon/thesaurus"
	"github.com/MrWong99/humanizer/pkg/store/postgres"
)

// lexiconDimensions is the vector length migrated when a store is opened only
// to import synsets. The vector table is left untouched if it already exists.
const lexiconDimensions = 1024

func importLexiconCommand(ctx context.Context, opts ImportLexiconOptions, ui UI) error {
	store, err := postgres.NewStore(ctx, opts.DSN, lexiconDimensions)
	if err != nil {
		return err
	}
	defer store.Close()

	total := 0
	for _, path := range opts.Files {
		t, err := thesaurus.LoadFile(path)
		if err != nil {
			return err
		}
		source := opts.Source
		if source == "" {
			source = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		fmt.Fprintf(ui.Out, "Importing %d synsets from %s...\n", t.Len(), path)
		synsets := t.Synsets()

		progress := uiprogress.New()
		progress.SetOut(ui.Err)
		progress.Start()
		bar := progress.AddBar(len(synsets)).AppendCompleted().PrependElapsed()

		for start := 0; start < len(synsets); start += opts.BatchSize {
			end := min(start+opts.BatchSize, len(synsets))
			n, err := store.ImportSynsets(ctx, source, synsets[start:end])
			if err != nil {
				progress.Stop()
				return fmt.Errorf("import %s: %w", path, err)
			}
			total += n
			_ = bar.Set(end)
		}
		progress.Stop()
	}

	count, err := store.CountSynsets(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.Out, "Imported %d synsets; the store now holds %d\n", total, count)
	return nil
}

func importVectorsCommand(ctx context.Context, opts ImportVectorsOptions, ui UI) error {
	f, err := os.Open(opts.File)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	store, err := postgres.NewStore(ctx, opts.DSN, opts.Dimensions)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(ui.Out, "Importing %s vectors from %s...\n", opts.Model, opts.File)

	progress := uiprogress.New()
	progress.SetOut(ui.Err)
	progress.Start()
	// The bar tracks bytes read; vector files are too large to count lines first.
	bar := progress.AddBar(int(info.Size())).PrependElapsed().AppendCompleted()
	n, err := store.ImportVectors(ctx, opts.Model, &countingReader{r: f, bar: bar})
	progress.Stop()
	if err != nil {
		return fmt.Errorf("import %s: %w", opts.File, err)
	}

	fmt.Fprintf(ui.Out, "Imported %d vectors for model %s\n", n, opts.Model)
	return nil
}

// countingReader advances a progress bar by the bytes read through it.
type countingReader struct {
	r    io.Reader
	bar  *uiprogress.Bar
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	_ = c.bar.Set(c.read)
	return n, err
}
