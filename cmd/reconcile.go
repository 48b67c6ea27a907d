package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"rackops/core/inventory"
	"rackops/core/reconcile"
	"rackops/core/remote"
	"rackops/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the reconcile subcommands
	dryRun     bool
	matchFlag  string
	jsonReport bool
	uploadFlag bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the inventory with what the machines report",
	Long: `Connect to every active machine over SSH and bring Racktables in line with it.

Progress goes to stdout, one line per finding:
  *   machine header
  +   write (or planned write with --dry-run)
  !   warning
  !!  conflict or error`,
}

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Register interface addresses reported by 'ip a l'",
	Long: `Reads 'ip a l' from every active machine, registers addresses that are
not yet allocated, and reports conflicts, MAC mismatches and missing ports.

Examples:
  # Report what would be written
  rackops reconcile interfaces --dry-run

  # Only web machines, keep the JSON report (progress goes to stderr)
  rackops reconcile interfaces --match 'web-' --json > report.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), (*reconcile.Engine).ReconcileInterfaces)
	},
}

var osVersionCmd = &cobra.Command{
	Use:   "os-version",
	Short: "Record the Debian release of every machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), (*reconcile.Engine).SyncOSVersions)
	},
}

func init() {
	for _, c := range []*cobra.Command{interfacesCmd, osVersionCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned writes without performing them")
		c.Flags().StringVar(&matchFlag, "match", "", "Only machines whose name matches this regular expression")
		c.Flags().BoolVar(&jsonReport, "json", false, "Write the run report as JSON to stdout when done")
		c.Flags().BoolVar(&uploadFlag, "upload", false, "Archive the run report in object storage")
		reconcileCmd.AddCommand(c)
	}

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(ctx context.Context, run func(*reconcile.Engine, context.Context) (*reconcile.Report, error)) error {
	e, err := setup()
	if err != nil {
		return err
	}

	var match *regexp.Regexp
	if matchFlag != "" {
		if match, err = inventory.NamePattern(matchFlag); err != nil {
			return err
		}
	}

	db, err := e.connect()
	if err != nil {
		return err
	}
	defer e.close(db)

	client, err := remote.NewClient(e.cfg.SSH, e.logger)
	if err != nil {
		return fmt.Errorf("failed to prepare SSH client: %w", err)
	}
	defer client.Close()

	opts := reconcile.Options{
		DryRun:  dryRun,
		Match:   match,
		Ignored: e.cfg.Reconcile.IgnoredInterfaces,
	}
	report, err := runEngine(ctx, run, inventory.New(db), client, e.logger, opts, os.Stdout, os.Stderr, jsonReport)
	if err != nil {
		return err
	}

	if uploadFlag || e.cfg.Reconcile.Upload {
		if err := upload(ctx, e, report); err != nil {
			return err
		}
	}

	return nil
}

// runEngine runs one reconciliation and prints its summary. With asJSON the
// report is the only thing written to stdout; progress and summary go to stderr.
func runEngine(
	ctx context.Context,
	run func(*reconcile.Engine, context.Context) (*reconcile.Report, error),
	inv reconcile.Inventory,
	exec remote.Executor,
	logger *zap.Logger,
	opts reconcile.Options,
	stdout, stderr io.Writer,
	asJSON bool,
) (*reconcile.Report, error) {
	progress := stdout
	if asJSON {
		progress = stderr
	}

	report, err := run(reconcile.NewEngine(inv, exec, logger, progress, opts), ctx)
	if err != nil {
		return nil, err
	}

	s := report.Summary
	fmt.Fprintf(progress, "%d machines, %d reached, %d skipped, %d writes, %d conflicts, %d warnings, %d errors\n",
		s.Machines, s.Reached, s.Skipped, s.Writes, s.Conflicts, s.Warnings, s.Errors)

	if asJSON {
		if err := report.WriteJSON(stdout); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}
	return report, nil
}

func upload(ctx context.Context, e *env, report *reconcile.Report) error {
	client, err := storage.NewClient(e.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	info, err := storage.Archive(ctx, client, e.cfg.Storage, report.ObjectName(), buf.Bytes(), "application/json")
	if err != nil {
		return err
	}

	e.logger.Info("Report archived",
		zap.String("bucket", info.Bucket),
		zap.String("object", info.Key),
		zap.Int64("size", info.Size))
	return nil
}
