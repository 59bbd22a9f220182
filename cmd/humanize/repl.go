package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/MrWong99/humanizer/internal/server"
)

var replCommands = []prompt.Suggest{
	{Text: ":synonyms", Description: "toggle synonym substitution"},
	{Text: ":seed", Description: "set a seed (:seed 42) or clear it (:seed)"},
	{Text: ":count", Description: "toggle word and sentence counts"},
	{Text: ":quit", Description: "leave the prompt"},
}

// replSession is the state the prompt carries between lines.
type replSession struct {
	humanizer server.Humanizer
	synonyms  bool
	passive   bool
	counts    bool
	seed      *uint64
}

func replCommand(ctx context.Context, opts TextOptions, ui UI) error {
	h, closeFn, err := buildHumanizer(ctx, opts.ConfigPath, opts.Lite)
	if err != nil {
		return err
	}
	defer closeFn()

	s := &replSession{humanizer: h, synonyms: opts.Synonyms, passive: opts.Passive, seed: opts.Seed}
	fmt.Fprintf(ui.Out, "humanize %s variant. type :quit to leave.\n", h.Variant())

	history := []string{}
	for {
		in := prompt.Input("✍  ", completer,
			prompt.OptionTitle("humanize"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionMaxSuggestion(8),
			prompt.OptionHistory(history),
		)
		if strings.TrimSpace(in) == "" {
			continue
		}
		history = append(history, in)

		out, quit := s.eval(ctx, in)
		if out != "" {
			fmt.Fprintln(ui.Out, out)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	w := d.GetWordBeforeCursor()
	if !strings.HasPrefix(w, ":") || strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(replCommands, w, true)
}

// eval runs one prompt line. It returns the text to print and whether the
// session should end.
func (s *replSession) eval(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}

	resp, err := server.Process(ctx, s.humanizer, server.HumanizeRequest{
		Text:        line,
		UsePassive:  s.passive,
		UseSynonyms: s.synonyms,
		Seed:        s.seed,
	}, false)
	if err != nil {
		return "❌ " + err.Error(), false
	}
	if !s.counts {
		return resp.HumanizedText, false
	}
	return fmt.Sprintf("%s\n   %d→%d words, %d→%d sentences", resp.HumanizedText,
		resp.InputWordCount, resp.OutputWordCount,
		resp.InputSentenceCount, resp.OutputSentenceCount), false
}

func (s *replSession) command(line string) (string, bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return "", true
	case ":synonyms":
		s.synonyms = !s.synonyms
		return fmt.Sprintf("synonyms %s", onOff(s.synonyms)), false
	case ":count":
		s.counts = !s.counts
		return fmt.Sprintf("counts %s", onOff(s.counts)), false
	case ":seed":
		if len(fields) == 1 {
			s.seed = nil
			return "seed cleared", false
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return "❌ seed must be a non-negative integer", false
		}
		s.seed = &v
		return fmt.Sprintf("seed %d", v), false
	}
	return fmt.Sprintf("❌ unknown command %s", fields[0]), false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
