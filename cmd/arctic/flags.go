// flags.go parses arctic's command-line flags.
package main

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/jschewts/arctic/internal/cti/diagnostics"
)

type config struct {
	help      bool
	verbosity diagnostics.Level
	demo      bool
	benchmark bool
	scenario  string
}

// parseArgs parses arctic's flags: -h/--help, -v/--verbosity <int>,
// -d/--demo, -b/--benchmark, and a trailing scenario file path.
//
// Unlike racedetector, arctic's flags are all independent switches rather
// than subcommands (matching original_source's getopt_long flags, not a
// verb-first CLI), so they're parsed in a single pass.
func parseArgs(args []string) (*config, error) {
	cfg := &config{verbosity: diagnostics.LevelStandard}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help":
			cfg.help = true
		case "-d", "--demo":
			cfg.demo = true
		case "-b", "--benchmark":
			cfg.benchmark = true
		case "-v", "--verbosity":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			level, err := cast.ToIntE(args[i])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", arg, err)
			}
			if level < 0 || level > 2 {
				return nil, fmt.Errorf("%s must be 0, 1, or 2, got %d", arg, level)
			}
			cfg.verbosity = diagnostics.Level(level)
		default:
			if cfg.scenario != "" {
				return nil, fmt.Errorf("unexpected argument %q", arg)
			}
			cfg.scenario = arg
		}
	}

	if (cfg.demo || cfg.benchmark) && cfg.scenario == "" {
		return nil, fmt.Errorf("-d/--demo and -b/--benchmark require a scenario file argument")
	}
	if cfg.demo && cfg.benchmark {
		return nil, fmt.Errorf("-d/--demo and -b/--benchmark are mutually exclusive")
	}
	return cfg, nil
}
