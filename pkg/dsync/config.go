package dsync

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the monitor's target table plus query parameters. It is
// loaded once at startup and passed in explicitly; nothing global.
type Config struct {
	Reference    string   `yaml:"reference"`
	SampleRateHz int      `yaml:"sample_rate"`
	TimeoutMs    int      `yaml:"timeout_ms"`
	Targets      []Target `yaml:"targets"`
}

// DefaultConfig returns the defaults used when no file is present:
// 96kHz thresholds and the standard half-second query deadline.
func DefaultConfig() Config {
	return Config{SampleRateHz: 96000, TimeoutMs: 500}
}

// LoadConfig reads a yaml target table. A missing file falls back to
// defaults, since hosts may arrive on the command line instead.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SampleRateHz <= 0 {
		cfg.SampleRateHz = DefaultConfig().SampleRateHz
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = DefaultConfig().TimeoutMs
	}
	for i := range cfg.Targets {
		if cfg.Targets[i].Address == "" {
			return Config{}, fmt.Errorf("target %d (%q) has no address", i, cfg.Targets[i].Name)
		}
		if cfg.Targets[i].Name == "" {
			cfg.Targets[i].Name = cfg.Targets[i].Address
		}
	}
	if cfg.Reference == "" && len(cfg.Targets) > 0 {
		cfg.Reference = cfg.Targets[0].Name
	}
	return cfg, nil
}

// Timeout is the per-exchange deadline as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ResolveHosts turns command-line host arguments into targets. Each
// argument is a configured target name, a name=address pair, or a bare
// address (anything containing a dot or colon).
func ResolveHosts(args []string, configured []Target) ([]Target, error) {
	var targets []Target
	for _, arg := range args {
		if name, address, ok := strings.Cut(arg, "="); ok {
			targets = append(targets, Target{Name: name, Address: address})
			continue
		}

		known := false
		for _, t := range configured {
			if t.Name == arg {
				targets = append(targets, t)
				known = true
				break
			}
		}
		if known {
			continue
		}

		if strings.ContainsAny(arg, ".:") {
			targets = append(targets, Target{Name: arg, Address: arg})
			continue
		}
		return nil, fmt.Errorf("unknown host %q: not in config and not an address", arg)
	}
	return targets, nil
}
