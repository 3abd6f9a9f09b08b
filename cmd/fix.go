package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/fixplan"
	"github.com/docaccess/pdfguard/pkg/pdfguard"
)

func newFixCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Apply automated or manual fixes to a PDF",
	}
	cmd.AddCommand(newFixAutomatedCmd(flags))
	cmd.AddCommand(newFixManualCmd(flags))
	return cmd
}

func newFixAutomatedCmd(flags *rootFlags) *cobra.Command {
	var scanID, scanPath string

	cmd := &cobra.Command{
		Use:   "automated <pdf>",
		Short: "Run apply_automated_fixes(): the automated remediation sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignalContext(context.Background())
			defer cancel()

			plan, err := loadOrBuildPlan(ctx, args[0], scanPath)
			if err != nil {
				return err
			}
			if scanID == "" {
				scanID = args[0]
			}

			client := pdfguard.New(flags.fixedRoot, nil)
			outcome, err := client.ApplyAutomatedFixes(ctx, scanID, args[0], plan)
			if err != nil {
				return err
			}
			return printOutcome(cmd, flags, outcome)
		},
	}

	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan identifier to serialize this fix under (defaults to the PDF path)")
	cmd.Flags().StringVar(&scanPath, "scan", "", "Path to a prior analyze() JSON result; re-scans the PDF if omitted")
	return cmd
}

func newFixManualCmd(flags *rootFlags) *cobra.Command {
	var scanID, fixType, dataJSON string
	var page int

	cmd := &cobra.Command{
		Use:   "manual <pdf>",
		Short: "Run apply_manual_fix(): one targeted fix (addAltText, addFormLabel, addOutputIntent, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixData := map[string]any{}
			if dataJSON != "" {
				if err := json.Unmarshal([]byte(dataJSON), &fixData); err != nil {
					return fmt.Errorf("invalid --data JSON: %w", err)
				}
			}
			if scanID == "" {
				scanID = args[0]
			}

			client := pdfguard.New(flags.fixedRoot, nil)
			outcome, err := client.ApplyManualFix(scanID, args[0], domain.FixType(fixType), fixData, page)
			if err != nil {
				return err
			}
			return printOutcome(cmd, flags, outcome)
		},
	}

	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan identifier to serialize this fix under (defaults to the PDF path)")
	cmd.Flags().StringVar(&fixType, "type", "", "FixType to apply, e.g. addAltText, addFormLabel, addOutputIntent")
	cmd.Flags().StringVar(&dataJSON, "data", "", "JSON object of fixData, e.g. '{\"imageIndex\":1,\"altText\":\"...\"}'")
	cmd.Flags().IntVar(&page, "page", 1, "Page the fix applies to")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func loadOrBuildPlan(ctx context.Context, pdfPath, scanPath string) (*domain.FixPlan, error) {
	if scanPath != "" {
		data, err := os.ReadFile(scanPath) //nolint:gosec
		if err != nil {
			return nil, err
		}
		var result domain.ScanResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", scanPath, err)
		}
		if result.Fixes != nil {
			return result.Fixes, nil
		}
		return fixplan.Plan(&result), nil
	}

	result, err := pdfguard.Analyze(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return result.Fixes, nil
}

func printOutcome(cmd *cobra.Command, flags *rootFlags, outcome *domain.FixOutcome) error {
	out, closeFn, err := openOutput(flags)
	if err != nil {
		return err
	}
	defer closeFn()

	if flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Fprintf(out, "success: %v\n", outcome.Success)
	if outcome.FixedTempPath != "" {
		fmt.Fprintf(out, "fixed temp file: %s\n", outcome.FixedTempPath)
	}
	for _, r := range outcome.FixesApplied {
		status := "ok"
		if !r.Success {
			status = "skipped"
			if r.Error != "" {
				status = "failed: " + r.Error
			}
		}
		fmt.Fprintf(out, "  [%s] %s — %s\n", status, r.Type, r.Description)
	}
	if outcome.Error != "" {
		fmt.Fprintf(out, "error: %s\n", outcome.Error)
	}
	return nil
}
