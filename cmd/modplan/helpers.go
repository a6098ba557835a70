package main

import (
	"fmt"
	"os"

	"modplan/internal/config"
	"modplan/internal/logging"
	"modplan/internal/project"
)

// newLogger builds a logger whose format tracks the command's output
// format: JSON output keeps the log stream machine-readable too.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.LogLevel(resolveLogLevel()),
	})
}

// loadWorkspace reads tool config and the project declaration from the
// current directory. Both are optional; defaults apply when absent.
func loadWorkspace() (*config.Config, *project.Declaration, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	decl, err := project.Load(cwd)
	if err != nil {
		return nil, nil, err
	}

	return cfg, decl, nil
}

// fail prints the error and exits. Command Run funcs use it for terminal
// failures after argument parsing succeeded.
func fail(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}
