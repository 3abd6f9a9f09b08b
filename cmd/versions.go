package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docaccess/pdfguard/pkg/pdfguard"
)

func newVersionsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Inspect and manage the fixed-version archive (C9)",
	}
	cmd.AddCommand(newVersionsListCmd(flags))
	cmd.AddCommand(newVersionsGetCmd(flags))
	cmd.AddCommand(newVersionsArchiveCmd(flags))
	cmd.AddCommand(newVersionsPruneCmd(flags))
	return cmd
}

func newVersionsGetCmd(flags *rootFlags) *cobra.Command {
	var version string
	var allowDownload bool

	cmd := &cobra.Command{
		Use:   "get <scanId>",
		Short: "Resolve one archived version (latest if --version is omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var versionPtr *int
			if version != "" {
				v, err := parsePositiveInt(version)
				if err != nil {
					return fmt.Errorf("invalid --version: %w", err)
				}
				versionPtr = &v
			}
			client := pdfguard.New(flags.fixedRoot, nil)
			entry, err := client.GetFixedVersion(args[0], versionPtr, allowDownload)
			if err != nil {
				return err
			}
			out, closeFn, err := openOutput(flags)
			if err != nil {
				return err
			}
			defer closeFn()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "Version number (defaults to latest)")
	cmd.Flags().BoolVar(&allowDownload, "allow-download", false, "Allow downloading a non-latest version (spec §4.9 policy override)")
	return cmd
}

func newVersionsListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scanId>",
		Short: "List every archived fixed version for a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := pdfguard.New(flags.fixedRoot, nil)
			entries, err := client.GetVersionedFiles(args[0])
			if err != nil {
				return err
			}
			out, closeFn, err := openOutput(flags)
			if err != nil {
				return err
			}
			defer closeFn()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
}

func newVersionsArchiveCmd(flags *rootFlags) *cobra.Command {
	var scanID, originalFilename string

	cmd := &cobra.Command{
		Use:   "archive <pdf>",
		Short: "Archive a fixed PDF as the next version for a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := pdfguard.New(flags.fixedRoot, nil)
			entry, err := client.ArchiveFixedPDFVersion(scanID, originalFilename, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived version %d at %s\n", entry.Version, entry.AbsolutePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan identifier owning this archive")
	cmd.Flags().StringVar(&originalFilename, "original-filename", "", "Original uploaded filename")
	_ = cmd.MarkFlagRequired("scan-id")
	return cmd
}

func newVersionsPruneCmd(flags *rootFlags) *cobra.Command {
	var keepLatest bool

	cmd := &cobra.Command{
		Use:   "prune <scanId>",
		Short: "Delete archived versions for a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := pdfguard.New(flags.fixedRoot, nil)
			return client.PruneFixedVersions(args[0], keepLatest)
		},
	}
	cmd.Flags().BoolVar(&keepLatest, "keep-latest", true, "Keep the latest version instead of deleting all")
	return cmd
}

// parsePositiveInt parses the string-typed --version flag (cobra lacks
// a *int parser that tells a caller-omitted flag apart from 0) and
// rejects values below 1, since archived versions start at 1.
func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("%d is not a positive version number", v)
	}
	return v, nil
}
