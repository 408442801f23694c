// Package config provides configuration management for the Astro CLI.
// Values are merged from defaults, an astro.yaml file, ASTRO_
// environment variables, and command-line flags, in increasing order
// of precedence.
package config

// Defaults for unset configuration values.
const (
	// DefaultStateFile is where run history is persisted.
	DefaultStateFile = ".astro/state.db"
)

// Config holds the resolved CLI configuration.
type Config struct {
	// StatePath is the run-history database location. Empty disables
	// history entirely.
	StatePath string `koanf:"state_path"`
	Verbose   bool   `koanf:"verbose"`

	// Default run toggles; per-run flags override them.
	AllowWarnings   bool `koanf:"allow_warnings"`
	PrintFullMemory bool `koanf:"print_full_memory"`
	DbgPrint        bool `koanf:"dbg_print"`
	Profile         bool `koanf:"profile"`
}
