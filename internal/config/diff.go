package config

import "reflect"

// ConfigDiff describes what changed between two configs.
// Hot-reloadable changes are applied in place; the rest are reported so the
// caller can warn that a restart is required.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// HumanizerChanged is true when any transformation parameter changed.
	// The server builds a new Humanizer and swaps it in atomically.
	HumanizerChanged bool

	// CORSChanged is true when the allowed origins changed.
	CORSChanged bool

	// RestartRequired lists top-level sections that changed but are only
	// read at startup (listen address, variant, providers, storage,
	// resilience).
	RestartRequired []string
}

// Empty reports whether d carries no change at all.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.HumanizerChanged && !d.CORSChanged && len(d.RestartRequired) == 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !reflect.DeepEqual(old.Humanizer, new.Humanizer) {
		d.HumanizerChanged = true
	}

	if !reflect.DeepEqual(old.Server.CORSOrigins, new.Server.CORSOrigins) {
		d.CORSChanged = true
	}

	if old.Server.ListenAddr != new.Server.ListenAddr || !reflect.DeepEqual(old.Server.TLS, new.Server.TLS) {
		d.RestartRequired = append(d.RestartRequired, "server.listen_addr")
	}
	if old.Server.Variant != new.Server.Variant {
		d.RestartRequired = append(d.RestartRequired, "server.variant")
	}
	if !reflect.DeepEqual(old.Providers, new.Providers) {
		d.RestartRequired = append(d.RestartRequired, "providers")
	}
	if old.Storage != new.Storage {
		d.RestartRequired = append(d.RestartRequired, "storage")
	}
	if old.Resilience != new.Resilience {
		d.RestartRequired = append(d.RestartRequired, "resilience")
	}

	return d
}
