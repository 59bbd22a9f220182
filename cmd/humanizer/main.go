// Command humanizer is the HTTP server for the text humanizer API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrWong99/humanizer/internal/app"
	"github.com/MrWong99/humanizer/internal/config"
	"github.com/MrWong99/humanizer/internal/observe"
	"github.com/MrWong99/humanizer/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (built-in defaults when empty)")
	listenAddr := flag.String("listen", "", "override server.listen_addr")
	variant := flag.String("variant", "", "override server.variant (full or lite)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "humanizer: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "humanizer: %v\n", err)
		}
		return 1
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *variant != "" {
		cfg.Server.Variant = config.Variant(*variant)
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "humanizer: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(app.ParseLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("humanizer starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"variant", cfg.Server.Variant,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	promReg := prometheus.NewRegistry()
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:       "humanizer",
		ServiceVersion:    server.Version,
		Variant:           string(cfg.Server.Variant),
		Registry:          promReg,
		RuntimeCollectors: true,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	var providers *app.Providers
	if cfg.Server.Variant == config.VariantFull {
		reg := config.NewRegistry()
		app.RegisterBuiltinProviders(reg)
		providers, err = app.BuildProviders(ctx, cfg, reg, metrics)
		if err != nil {
			slog.Error("failed to build providers", "err", err)
			return 1
		}
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(ctx, cfg, providers,
		app.WithMetrics(metrics),
		app.WithLevelVar(level),
		app.WithHandler("GET /metrics", observe.MetricsHandler(promReg)),
	)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, application.Reload)
		if err != nil {
			slog.Error("failed to watch config", "err", err)
			return 1
		}
		defer watcher.Stop()

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-hup:
					slog.Info("SIGHUP received, reloading config")
					watcher.Reload()
				}
			}
		}()
	}

	slog.Info("server ready; press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		_ = application.Shutdown(context.Background())
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        Humanizer startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	fmt.Printf("║  Variant         : %-19s ║\n", cfg.Server.Variant)
	printProviders("Embeddings", cfg.Providers.Embeddings)
	printProviders("Lexicon", cfg.Providers.Lexicon)
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	if cfg.Storage.PostgresDSN != "" {
		fmt.Printf("║  Postgres        : %-19s ║\n", "configured")
	} else {
		fmt.Printf("║  Postgres        : %-19s ║\n", "(disabled)")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProviders(kind string, entries []config.ProviderEntry) {
	if len(entries) == 0 {
		printProvider(kind, "", "")
		return
	}
	for i, e := range entries {
		label := kind
		if i > 0 {
			label = "  fallback"
		}
		printProvider(label, e.Name, e.Model)
	}
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	fmt.Printf("║  %s    : %s ║\n", fitColumn(kind, 12), fitColumn(value, 19))
}

// fitColumn pads or truncates s to exactly width runes, marking a cut with
// "…".
func fitColumn(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
