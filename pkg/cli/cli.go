// Package cli parses command line arguments for the twinething
// binary.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings parsed from the command line.
type Config struct {
	GamePath  string        // game directory
	EntryFile string        // story file name, when a .twee path was given
	Timeout   time.Duration // 0 means unlimited
	LogLevel  string        // debug, info, warn, error
	Headless  bool          // run without a window
	ShowHelp  bool
}

// ParseArgs parses command line arguments into a Config. Flags may
// appear before or after the game path; environment variables
// (HEADLESS, TIMEOUT, LOG_LEVEL) fill in anything the flags leave at
// its default.
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("twinething", flag.ContinueOnError)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "terminate after the given number of seconds")
	fs.IntVar(&timeoutSec, "t", 0, "terminate after the given number of seconds (shorthand)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (shorthand)")
	fs.BoolVar(&config.Headless, "headless", false, "run without a window")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// Environment variables apply when the flags kept their defaults.
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}
	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// Positional argument: game directory or story file.
	if fs.NArg() > 0 {
		path := fs.Arg(0)

		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, ".twee") || strings.HasSuffix(lower, ".tw") {
			config.GamePath = filepath.Dir(path)
			config.EntryFile = filepath.Base(path)
		} else {
			config.GamePath = path
		}
	}

	return config, nil
}

// reorderArgs moves flags in front of positional arguments so the
// stdlib flag package sees all of them.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// A following non-flag argument is this flag's value,
			// except for the boolean flags.
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if arg != "-h" && arg != "-help" && arg != "--help" &&
					arg != "-headless" && arg != "--headless" {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp writes the usage text to stdout.
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `twinething - Twee story engine

Usage:
  twinething [options] <game-path>

Arguments:
  game-path     Game directory, or path to a .twee story file.
                A directory is searched for game.toml and the first
                .twee/.tw source.

Options:
  -t, --timeout <seconds>     terminate after the given time (default: unlimited)
  -l, --log-level <level>     log level: debug, info, warn, error (default: info)
  --headless                  run without a window (compile and execute only)
  -h, --help                  show this help

Environment Variables:
  HEADLESS=1                  enable headless mode
  TIMEOUT=<seconds>           execution timeout
  LOG_LEVEL=<level>           log level

Examples:
  twinething games/cave                 run the game in games/cave
  twinething games/cave/story.twee      use an explicit story file
  twinething --timeout 10 games/cave    stop after 10 seconds
  twinething --headless games/cave      run without a window
`)
}
