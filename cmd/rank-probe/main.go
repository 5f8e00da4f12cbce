// Package main is the entry point for the rank-probe CLI, which sends
// generated candidate lists to a running ranking service and verifies the
// responses.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/reciperank/internal/probe"
	"github.com/okian/reciperank/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests    = 200
	defaultCandidates  = 100
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func newRootCmd() *cobra.Command {
	cfg := &probe.Config{}
	var verboseLevel bool

	cmd := &cobra.Command{
		Use:   "rank-probe",
		Short: "Load and consistency probe for the recipe ranking service",
		Long: `rank-probe generates random recipe candidate lists, posts them to /rank
(or /rank/merge with --merge) from concurrent workers, and checks that every
response ranks exactly the candidates sent, highest score first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if verboseLevel {
				level = "debug"
			}
			return logger.Init(logger.WithLevel(level), logger.WithWriter(cmd.ErrOrStderr()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Verbose = verboseLevel
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
			defer cancel()

			stats, err := probe.Run(ctx, cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "sent=%d ok=%d failed=%d invalid=%d ranked=%d duration=%s\n",
					stats.RequestsSent, stats.RequestsSuccessful, stats.RequestsFailed,
					stats.ResponsesInvalid, stats.CandidatesRanked, stats.Duration)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Requests, "requests", defaultRequests, "number of ranking requests to send")
	f.IntVar(&cfg.Candidates, "candidates", defaultCandidates, "candidates per request")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.StringVar(&cfg.Mode, "mode", "", "ranking mode (balanced, semantic, quality, popular, trending, discovery)")
	f.BoolVar(&cfg.CBOR, "cbor", false, "send and accept application/cbor")
	f.BoolVar(&cfg.Merge, "merge", false, "split each list into two result sets and call /rank/merge")
	f.StringVar(&cfg.OutputFile, "output", "", "write the generated lists to this JSON file")
	f.BoolVarP(&verboseLevel, "verbose", "v", false, "enable verbose logging")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
