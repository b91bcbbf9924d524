package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vulnverified/hostprobe/internal/engine"
	"github.com/vulnverified/hostprobe/internal/input"
	"github.com/vulnverified/hostprobe/internal/logger"
	"github.com/vulnverified/hostprobe/internal/output"
	"github.com/vulnverified/hostprobe/internal/recon"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	output.Version = version

	var opts options

	rootCmd := &cobra.Command{
		Use:          "hostprobe",
		Short:        "Find which hostnames resolve and serve HTTP",
		Long:         "Resolve a list of candidate hostnames and probe the ones that resolve over HTTPS and HTTP. Uses dnsx and httpx when installed, native Go lookups and requests otherwise.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), &opts, os.LookupEnv)
			if err != nil {
				return err
			}

			// Respect NO_COLOR env var.
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				opts.noColor = true
			}

			showProgress := !opts.jsonOutput && !opts.silent

			level := logger.ParseLevel(cfg.Log.Level, opts.verbose)
			consoleLevel := level
			if !showProgress && !opts.verbose {
				consoleLevel = zerolog.ErrorLevel
			}
			log, closeLog := logger.New(logger.Options{
				Level:        level,
				ConsoleLevel: consoleLevel,
				NoColor:      opts.noColor,
				Console:      os.Stderr,
				File:         cfg.Log.File,
				MaxSizeMB:    cfg.Log.MaxSizeMB,
				MaxBackups:   cfg.Log.MaxBackups,
			})
			defer closeLog()

			// Set up context with signal handling for clean Ctrl+C.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					log.Warn().Msg("Interrupted, cleaning up...")
					cancel()
				case <-ctx.Done():
				}
			}()

			progress := output.NewProgress(log, !showProgress)
			if showProgress {
				output.WriteHeader(os.Stderr, opts.noColor)
			}

			// Pick strategies once, before any host is touched.
			stages, notices := recon.Stages(recon.Options{
				ForceNative: cfg.Native,
				Nameservers: cfg.Resolvers,
				HTTPXJSON:   cfg.HTTPXJSON,
				UserAgent:   userAgent(cfg),
				RateLimit:   cfg.RateLimit,
				Log:         log,
			})
			for _, n := range notices {
				progress.Notice(n)
			}

			lines, err := input.ReadFile(cfg.Input)
			if err != nil {
				return err
			}

			result, err := engine.Run(ctx, engine.Config{
				InputPath:      cfg.Input,
				Pattern:        cfg.Pattern,
				Sample:         cfg.Sample,
				Concurrency:    cfg.Threads,
				DNSConcurrency: cfg.DNSThreads,
				Timeout:        cfg.TimeoutDuration(),
			}, lines, stages, progress)
			if err != nil {
				return err
			}

			files := output.Artifacts{
				LivePath: cfg.Output,
				RawPath:  cfg.RawOutput,
				DeadPath: cfg.DeadOutput,
			}
			if err := output.WriteArtifacts(files, result); err != nil {
				return err
			}

			progress.Complete()

			if opts.jsonOutput {
				return output.WriteJSON(os.Stdout, result, files)
			}
			output.WriteSummary(os.Stdout, result, files, opts.noColor)
			return nil
		},
	}

	registerFlags(rootCmd.Flags(), &opts)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("hostprobe {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
