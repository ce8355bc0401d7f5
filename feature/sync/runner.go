package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/feature/commoncodes"
	"access-sync/feature/roomcodes"
	"access-sync/feature/stays"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when a run is requested while one is executing.
	ErrRunInProgress = errors.New("sync: run already in progress")

	// ErrSnapshot marks a run aborted because the reservation source could not be read.
	ErrSnapshot = errors.New("sync: snapshot unavailable")
)

// Sweeper retries deferred room block deletions.
type Sweeper interface {
	Sweep(ctx context.Context, exec *reconcile.Executor) error
}

// SnapshotInfo summarizes the snapshot a run worked from.
type SnapshotInfo struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Reservations int    `json:"reservations"`
	Stays        int    `json:"stays"`
	Rejected     int    `json:"rejected"`
	Protected    int    `json:"protected"`
}

// RunResult is the outcome of one run.
type RunResult struct {
	RunID      string              `json:"run_id"`
	DryRun     bool                `json:"dry_run"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Snapshot   SnapshotInfo        `json:"snapshot"`
	Reports    []*reconcile.Report `json:"reports"`
}

// Failed returns the number of failed actions across all scopes.
func (r *RunResult) Failed() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Summary.Failed
	}
	return n
}

// Runner executes reconciliation runs one at a time.
type Runner struct {
	builder  *stays.Builder
	rooms    *roomcodes.Reconciler
	common   *commoncodes.Reconciler
	blocks   Sweeper
	resolver reconcile.Resolver
	rules    *property.Rules
	logger   *zap.Logger
	now      func() time.Time

	mu gosync.Mutex
}

// NewRunner creates a runner. blocks may be nil.
func NewRunner(builder *stays.Builder, rooms *roomcodes.Reconciler, common *commoncodes.Reconciler, blocks Sweeper, resolver reconcile.Resolver, rules *property.Rules, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		builder:  builder,
		rooms:    rooms,
		common:   common,
		blocks:   blocks,
		resolver: resolver,
		rules:    rules,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one reconciliation run. A source read failure aborts the run
// before anything is written; provider failures are recorded in the reports.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*RunResult, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	res := &RunResult{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: r.now(),
	}
	log := r.logger.With(zap.String("run_id", res.RunID), zap.Bool("dry_run", dryRun))
	log.Info("Reconciliation run started")

	snap, err := r.builder.Fetch(ctx, res.RunID, res.StartedAt, r.rules)
	if err != nil {
		log.Error("Reconciliation run aborted", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	res.Snapshot = SnapshotInfo{
		From:         snap.From,
		To:           snap.To,
		Reservations: snap.Reservations,
		Stays:        len(snap.Stays),
		Rejected:     snap.Rejected,
		Protected:    len(snap.Protected),
	}

	if !dryRun {
		if err := r.builder.Commit(ctx, snap); err != nil {
			log.Error("Reconciliation run aborted", zap.Error(err))
			return nil, err
		}
		r.builder.Archive(ctx, snap)
	}

	snapExec := r.executor(reconcile.ScopeSnapshot, dryRun, log)
	if err := r.builder.Cleanup(ctx, snapExec, snap); err != nil {
		log.Error("Stale stay cleanup failed", zap.Error(err))
	}
	res.Reports = append(res.Reports, r.finish(snapExec))

	working, err := r.builder.Working(ctx, snap)
	if err != nil {
		log.Error("Reconciliation run aborted", zap.Error(err))
		return nil, err
	}

	roomExec := r.executor(reconcile.ScopeRoom, dryRun, log)
	if err := r.rooms.Run(ctx, roomExec, working); err != nil {
		log.Error("Room code reconciliation failed", zap.Error(err))
	}
	res.Reports = append(res.Reports, r.finish(roomExec))

	commonExec := r.executor(reconcile.ScopeCommon, dryRun, log)
	if err := r.common.Run(ctx, commonExec, working); err != nil {
		log.Error("Common code reconciliation failed", zap.Error(err))
	}
	res.Reports = append(res.Reports, r.finish(commonExec))

	if r.blocks != nil {
		blockExec := r.executor(reconcile.ScopeRoomBlock, dryRun, log)
		if err := r.blocks.Sweep(ctx, blockExec); err != nil {
			log.Error("Room block sweep failed", zap.Error(err))
		}
		res.Reports = append(res.Reports, r.finish(blockExec))
	}

	res.FinishedAt = r.now()
	for _, rep := range res.Reports {
		log.Info("Scope reconciled",
			zap.String("scope", string(rep.Scope)),
			zap.Int("created", rep.Summary.Created),
			zap.Int("adopted", rep.Summary.Adopted),
			zap.Int("updated", rep.Summary.Updated),
			zap.Int("deleted", rep.Summary.Deleted),
			zap.Int("failed", rep.Summary.Failed),
			zap.Int("skipped", rep.Summary.Skipped),
		)
	}
	log.Info("Reconciliation run finished", zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

func (r *Runner) executor(scope reconcile.Scope, dryRun bool, log *zap.Logger) *reconcile.Executor {
	report := reconcile.NewReport(scope, dryRun, r.now())
	return reconcile.NewExecutor(r.resolver, report, reconcile.Options{
		DryRun: dryRun,
		Now:    r.now,
		Logger: log,
	})
}

func (r *Runner) finish(exec *reconcile.Executor) *reconcile.Report {
	rep := exec.Report()
	rep.Finish(r.now())
	return rep
}
