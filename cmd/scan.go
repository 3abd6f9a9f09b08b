package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/docaccess/pdfguard/internal/reporter"
	"github.com/docaccess/pdfguard/pkg/pdfguard"
)

func newScanCmd(flags *rootFlags) *cobra.Command {
	var deadline time.Duration

	cmd := &cobra.Command{
		Use:   "scan <pdf>",
		Short: "Run analyze() against a PDF: WCAG, PDF/UA and PDF/A conformance plus a fix plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignalContext(context.Background())
			defer cancel()
			if deadline > 0 {
				var dcancel context.CancelFunc
				ctx, dcancel = context.WithTimeout(ctx, deadline)
				defer dcancel()
			}

			result, err := pdfguard.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			format, err := reporter.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			out, closeFn, err := openOutput(flags)
			if err != nil {
				return err
			}
			defer closeFn()
			return reporter.Write(out, result, format)
		},
	}

	cmd.Flags().DurationVar(&deadline, "deadline", 0, "Per-call deadline; exceeding it reports ErrDeadline (0 = no deadline)")
	return cmd
}
