package cmd

import (
	"context"
	"fmt"

	"access-sync/core/config"
	"access-sync/core/logger"
	"access-sync/core/reconcile"
	"access-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	dryRunSync  bool
	verboseSync bool
)

// syncCmd runs one reconciliation pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass",
	Long: `Reads the reservation source once and converges room, common-area and
room block codes with it.

Examples:
  # Apply changes
  sync

  # Show what would change without touching the locks or the database
  sync --dry-run --verbose`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Report planned actions without changing anything")
	syncCmd.Flags().BoolVarP(&verboseSync, "verbose", "v", false, "Print every action, not only the summary")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	a, err := buildApp(cfg, l)
	if err != nil {
		return err
	}

	res, err := a.runner.Run(context.Background(), dryRunSync)
	if err != nil {
		return err
	}

	printRunResult(l, res, verboseSync)
	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d actions failed, they will be retried on the next run", n)
	}
	return nil
}

// printRunResult logs the per-scope summaries and, when verbose, every action.
func printRunResult(l *zap.Logger, res *sync.RunResult, verbose bool) {
	l.Info("Reconciliation report",
		zap.String("run_id", res.RunID),
		zap.Bool("dry_run", res.DryRun),
		zap.String("window_from", res.Snapshot.From),
		zap.String("window_to", res.Snapshot.To),
		zap.Int("reservations", res.Snapshot.Reservations),
		zap.Int("stays", res.Snapshot.Stays),
		zap.Int("rejected", res.Snapshot.Rejected),
	)

	for _, rep := range res.Reports {
		s := rep.Summary
		l.Info("Scope summary",
			zap.String("scope", string(rep.Scope)),
			zap.Int("created", s.Created),
			zap.Int("adopted", s.Adopted),
			zap.Int("updated", s.Updated),
			zap.Int("deleted", s.Deleted),
			zap.Int("failed", s.Failed),
			zap.Int("skipped", s.Skipped),
		)
		for _, a := range rep.Actions {
			if !verbose && !a.Failed() {
				continue
			}
			printAction(l, rep.Scope, a)
		}
	}
}

func printAction(l *zap.Logger, scope reconcile.Scope, a reconcile.Action) {
	fields := []zap.Field{
		zap.String("scope", string(scope)),
		zap.String("action", string(a.Type)),
		zap.String("key", a.Key),
	}
	if a.LockID != 0 {
		fields = append(fields, zap.Uint("lock_id", a.LockID))
	}
	if a.CodeID != "" {
		fields = append(fields, zap.String("code_id", a.CodeID))
	}
	if a.Reason != "" {
		fields = append(fields, zap.String("reason", a.Reason))
	}
	if a.Planned {
		fields = append(fields, zap.Bool("planned", true))
	}
	if a.Failed() {
		l.Error("Action failed", append(fields, zap.String("error", a.Error))...)
		return
	}
	l.Info("Action", fields...)
}
