// Package main is the entry point for the scriptx command line tool.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ManitVig/scriptx/pkg/parser"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "scriptx",
		Short:        "Tokenize, parse and run scriptx programs",
		SilenceUsage: true,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("scriptx version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.Int("max-depth", 0, "Maximum expression nesting depth (default 256, env SCRIPTX_MAX_DEPTH)")
	flags.Int("max-source-length", 0, "Maximum source length in bytes, 0 for no limit (env SCRIPTX_MAX_SOURCE_LENGTH)")
	flags.Bool("strict", false, "Reject top-level statements other than let (env SCRIPTX_STRICT)")
	flags.StringP("output", "o", "text", "Output format: text, json or yaml")

	root.AddCommand(newTokensCmd(), newParseCmd(), newRunCmd(), newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// parserOptions builds parser options from flags, falling back to the
// environment and then to defaults.
func parserOptions(cmd *cobra.Command) ([]parser.Option, error) {
	maxDepth, err := strconv.Atoi(envOrDefault("SCRIPTX_MAX_DEPTH", strconv.Itoa(parser.DefaultMaxDepth)))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIPTX_MAX_DEPTH: %w", err)
	}
	if v, _ := cmd.Flags().GetInt("max-depth"); v != 0 {
		maxDepth = v
	}

	maxLen, err := strconv.Atoi(envOrDefault("SCRIPTX_MAX_SOURCE_LENGTH", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIPTX_MAX_SOURCE_LENGTH: %w", err)
	}
	if v, _ := cmd.Flags().GetInt("max-source-length"); v != 0 {
		maxLen = v
	}

	strict, err := strconv.ParseBool(envOrDefault("SCRIPTX_STRICT", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRIPTX_STRICT: %w", err)
	}
	if v, _ := cmd.Flags().GetBool("strict"); v {
		strict = true
	}

	opts := []parser.Option{parser.WithMaxDepth(maxDepth), parser.WithMaxSourceLength(maxLen)}
	if strict {
		opts = append(opts, parser.WithStrictStatements())
	}
	return opts, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
