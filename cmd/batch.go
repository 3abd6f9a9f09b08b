package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/docaccess/pdfguard/internal/batch"
	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/reporter"
	"github.com/docaccess/pdfguard/pkg/pdfguard"
)

type batchScanFlags struct {
	jobs     int
	queue    int
	maxDepth int
	ext      []string
	ignore   []string
}

type batchFileResult struct {
	Path   string             `json:"path"`
	Error  string             `json:"error,omitempty"`
	Result *domain.ScanResult `json:"result,omitempty"`
}

func newBatchCmd(root *rootFlags) *cobra.Command {
	flags := &batchScanFlags{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run analyze() across many PDFs with a worker pool",
	}

	cmd.PersistentFlags().IntVarP(&flags.jobs, "jobs", "j", 4, "Number of parallel workers")
	cmd.PersistentFlags().IntVar(&flags.queue, "queue", 64, "Job queue buffer size")
	cmd.PersistentFlags().IntVar(&flags.maxDepth, "max-depth", -1, "Maximum directory depth to traverse (-1 = unlimited)")
	cmd.PersistentFlags().StringSliceVar(&flags.ext, "ext", []string{".pdf"}, "File extensions to include when a target is a directory")
	cmd.PersistentFlags().StringSliceVar(&flags.ignore, "ignore", nil, "Glob patterns to ignore")

	cmd.AddCommand(newBatchScanCmd(root, flags))
	return cmd
}

func newBatchScanCmd(root *rootFlags, flags *batchScanFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <paths...>",
		Short: "Analyze every PDF under the given paths or glob patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignalContext(context.Background())
			defer cancel()

			targets, err := batch.ExpandTargets(args)
			if err != nil {
				return fmt.Errorf("expand targets: %w", err)
			}
			files, err := batch.DiscoverFiles(targets, batch.DiscoverOptions{
				MaxDepth:   flags.maxDepth,
				Extensions: flags.ext,
				Ignore:     flags.ignore,
			})
			if err != nil {
				return fmt.Errorf("discover files: %w", err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matched %v", args)
			}

			out, closeFn, err := openOutput(root)
			if err != nil {
				return err
			}
			defer closeFn()

			res := batch.Run(ctx, files, batch.Config{Workers: flags.jobs, QueueSize: flags.queue},
				func(ctx context.Context, path string) batch.ItemResult {
					scan, err := pdfguard.Analyze(ctx, path)
					return batch.ItemResult{Path: path, Value: scan, Err: err}
				},
				func(update batch.ProgressUpdate) {
					if update.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %v\n", update.Completed, update.Total, update.Path, update.Err)
						return
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", update.Completed, update.Total, update.Path)
				})

			return writeBatchSummary(out, res, root)
		},
	}
}

func writeBatchSummary(out io.Writer, res batch.Result, root *rootFlags) error {
	summaries := make([]batchFileResult, 0, len(res.Items))
	for _, item := range res.Items {
		entry := batchFileResult{Path: item.Path}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		} else if scan, ok := item.Value.(*domain.ScanResult); ok {
			entry.Result = scan
		}
		summaries = append(summaries, entry)
	}

	format, err := reporter.ParseFormat(root.format)
	if err != nil {
		return err
	}
	if format != reporter.FormatJSON {
		for _, s := range summaries {
			if s.Error != "" {
				fmt.Fprintf(out, "== %s ==\nerror: %s\n\n", s.Path, s.Error)
				continue
			}
			fmt.Fprintf(out, "== %s ==\n", s.Path)
			if werr := reporter.Write(out, s.Result, format); werr != nil {
				return werr
			}
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
