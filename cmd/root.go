package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/docaccess/pdfguard/internal/config"
	"github.com/docaccess/pdfguard/internal/logging"
)

const appName = "pdfguard"

type rootFlags struct {
	format     string
	output     string
	verbose    bool
	fixedRoot  string
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Check and remediate PDF accessibility and archival conformance",
		Long:          "pdfguard scans PDFs for WCAG 2.1, PDF/UA-1 and PDF/A-1 conformance issues and applies automated or manual fixes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logrus.InfoLevel
			if flags.verbose {
				level = logrus.DebugLevel
			}
			logging.Configure(level)

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			// pdfguard.yaml sets the baseline; an explicitly passed
			// --fixed-root flag still wins over it.
			if !cmd.Flags().Changed("fixed-root") {
				flags.fixedRoot = cfg.FixedRoot
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.format, "format", "f", "text", "Output format: text, json, markdown")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "Write output to file instead of stdout")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.fixedRoot, "fixed-root", "./fixed", "Root directory for the fixed-version archive")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "pdfguard.yaml", "Path to the pdfguard.yaml run-configuration file")

	cmd.AddCommand(newScanCmd(flags))
	cmd.AddCommand(newFixCmd(flags))
	cmd.AddCommand(newVersionsCmd(flags))
	cmd.AddCommand(newBatchCmd(flags))

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	return cmd
}

func withSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()
	return ctx, cancel
}

// Execute runs the CLI, exiting the process on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error(appName + " failed")
		os.Exit(1)
	}
}

func openOutput(flags *rootFlags) (*os.File, func(), error) {
	if flags.output == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(flags.output) //nolint:gosec
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
