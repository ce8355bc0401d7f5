package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"access-sync/core/property"
	"access-sync/core/seam"

	"go.uber.org/zap"
)

// Desired is the code a key should hold on a lock.
type Desired struct {
	Key    string
	PIN    string
	Name   string
	Window property.Window
}

// Outcome describes how Ensure satisfied a Desired code.
type Outcome struct {
	CodeID  string
	Adopted bool
}

// Options controls an Executor.
type Options struct {
	// DryRun records planned actions without mutating the provider.
	DryRun bool
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
	// Logger receives per-action log lines. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Executor performs the create/adopt/update/delete primitive for one scope
// of one run. It is not meant to outlive the run: device listings are cached
// for its lifetime.
type Executor struct {
	resolver Resolver
	report   *Report
	dryRun   bool
	now      func() time.Time
	log      *zap.Logger
	cache    *codeCache

	mu     sync.Mutex
	claims map[string]string
}

// NewExecutor creates an executor that records into report.
func NewExecutor(resolver Resolver, report *Report, opts Options) *Executor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		resolver: resolver,
		report:   report,
		dryRun:   opts.DryRun,
		now:      now,
		log:      log.With(zap.String("scope", string(report.Scope))),
		cache:    newCodeCache(),
		claims:   make(map[string]string),
	}
}

// Report returns the report actions are recorded into.
func (e *Executor) Report() *Report {
	return e.report
}

// DryRun reports whether mutations are only planned.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Now returns the executor's current time.
func (e *Executor) Now() time.Time {
	return e.now()
}

// Logger returns the scope logger.
func (e *Executor) Logger() *zap.Logger {
	return e.log
}

// Ensure makes sure lock carries d's PIN, adopting an existing code when one
// matches and creating one otherwise. A listing failure aborts the key
// without creating anything. In a dry run the planned action is recorded and
// ErrDryRun is returned together with the outcome that would have applied.
func (e *Executor) Ensure(ctx context.Context, lock LockRef, d Desired) (Outcome, error) {
	action := Action{Key: d.Key, LockID: lock.ID}

	provider, err := e.resolver.Resolve(lock)
	if err != nil {
		action.Type = ActionCreate
		e.fail(action, fmt.Errorf("resolve lock %s: %w", lock.DeviceID, err))
		return Outcome{}, err
	}

	e.claim(lock.DeviceID, d.PIN, d.Key)

	codes, err := e.cache.list(ctx, provider, lock.DeviceID)
	if err != nil {
		action.Type = ActionCreate
		action.Reason = "listing codes failed"
		e.fail(action, err)
		return Outcome{}, fmt.Errorf("list codes on %s: %w", lock.DeviceID, err)
	}

	for _, code := range codes {
		if code.Code == d.PIN {
			action.Type = ActionAdopt
			action.CodeID = code.ID
			action.Reason = "matching code already on lock"
			e.report.Record(action)
			e.log.Info("Adopted access code",
				zap.String("key", d.Key),
				zap.String("device_id", lock.DeviceID),
				zap.String("code_id", code.ID),
			)
			out := Outcome{CodeID: code.ID, Adopted: true}
			if e.dryRun {
				return out, ErrDryRun
			}
			return out, nil
		}
	}

	if d.Window.Elapsed(e.now()) {
		action.Type = ActionSkip
		action.Reason = "window already elapsed"
		e.report.Record(action)
		e.log.Debug("Skipped code creation", zap.String("key", d.Key), zap.Time("ends_at", d.Window.End))
		return Outcome{}, ErrWindowElapsed
	}

	if e.dryRun {
		e.report.Record(Action{Type: ActionCreate, Key: d.Key, LockID: lock.ID, Reason: "no matching code on lock"})
		return Outcome{}, ErrDryRun
	}

	codeID, err := e.create(ctx, provider, lock, d)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{CodeID: codeID}, nil
}

// Create programs d on lock without looking for a code to adopt. It is meant
// for PINs that are not derived from the key, such as random ones.
func (e *Executor) Create(ctx context.Context, lock LockRef, d Desired) (string, error) {
	provider, err := e.resolver.Resolve(lock)
	if err != nil {
		e.fail(Action{Type: ActionCreate, Key: d.Key, LockID: lock.ID}, fmt.Errorf("resolve lock %s: %w", lock.DeviceID, err))
		return "", err
	}
	if d.Window.Elapsed(e.now()) {
		e.report.Record(Action{Type: ActionSkip, Key: d.Key, LockID: lock.ID, Reason: "window already elapsed"})
		return "", ErrWindowElapsed
	}
	if e.dryRun {
		e.report.Record(Action{Type: ActionCreate, Key: d.Key, LockID: lock.ID})
		return "", ErrDryRun
	}
	return e.create(ctx, provider, lock, d)
}

// PINsInUse returns the PINs currently programmed on lock.
func (e *Executor) PINsInUse(ctx context.Context, lock LockRef) (map[string]struct{}, error) {
	provider, err := e.resolver.Resolve(lock)
	if err != nil {
		return nil, fmt.Errorf("resolve lock %s: %w", lock.DeviceID, err)
	}
	codes, err := e.cache.list(ctx, provider, lock.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("list codes on %s: %w", lock.DeviceID, err)
	}
	out := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		out[c.Code] = struct{}{}
	}
	return out, nil
}

func (e *Executor) create(ctx context.Context, provider CodeProvider, lock LockRef, d Desired) (string, error) {
	action := Action{Type: ActionCreate, Key: d.Key, LockID: lock.ID}

	created, err := provider.CreateAccessCode(ctx, seam.CreateParams{
		DeviceID: lock.DeviceID,
		Code:     d.PIN,
		Name:     d.Name,
		StartsAt: d.Window.Start,
		EndsAt:   d.Window.End,
	})
	if err != nil {
		e.fail(action, err)
		return "", fmt.Errorf("create code on %s: %w", lock.DeviceID, err)
	}

	e.cache.add(lock.DeviceID, *created)
	action.CodeID = created.ID
	e.report.Record(action)
	e.log.Info("Created access code",
		zap.String("key", d.Key),
		zap.String("device_id", lock.DeviceID),
		zap.String("code_id", created.ID),
		zap.Time("starts_at", d.Window.Start),
		zap.Time("ends_at", d.Window.End),
	)
	return created.ID, nil
}

// Refresh sets codeID's window unconditionally. It returns ErrCodeGone when
// the provider no longer knows codeID.
func (e *Executor) Refresh(ctx context.Context, lock LockRef, key, codeID string, w property.Window) error {
	action := Action{Type: ActionUpdate, Key: key, LockID: lock.ID, CodeID: codeID}

	provider, err := e.resolver.Resolve(lock)
	if err != nil {
		e.fail(action, fmt.Errorf("resolve lock %s: %w", lock.DeviceID, err))
		return err
	}
	if e.dryRun {
		e.report.Record(action)
		return ErrDryRun
	}

	if err := provider.UpdateAccessCode(ctx, seam.UpdateParams{
		AccessCodeID: codeID,
		StartsAt:     w.Start,
		EndsAt:       w.End,
	}); err != nil {
		if errors.Is(err, seam.ErrNotFound) {
			action.Reason = "code no longer on lock"
			e.cache.remove(codeID)
			e.fail(action, err)
			return fmt.Errorf("%w: %s", ErrCodeGone, codeID)
		}
		e.fail(action, err)
		return fmt.Errorf("update code %s: %w", codeID, err)
	}

	e.report.Record(action)
	e.log.Info("Refreshed access code window",
		zap.String("key", key),
		zap.String("code_id", codeID),
		zap.Time("starts_at", w.Start),
		zap.Time("ends_at", w.End),
	)
	return nil
}

// Remove deletes codeID from the provider. A code the provider no longer
// knows is treated as removed.
func (e *Executor) Remove(ctx context.Context, lock LockRef, key, codeID, reason string) error {
	action := Action{Type: ActionDelete, Key: key, LockID: lock.ID, CodeID: codeID, Reason: reason}

	provider, err := e.resolver.Resolve(lock)
	if err != nil {
		e.fail(action, fmt.Errorf("resolve lock %s: %w", lock.DeviceID, err))
		return err
	}
	if e.dryRun {
		e.report.Record(action)
		return ErrDryRun
	}

	if err := provider.DeleteAccessCode(ctx, codeID); err != nil {
		if !errors.Is(err, seam.ErrNotFound) {
			e.fail(action, err)
			return fmt.Errorf("delete code %s: %w", codeID, err)
		}
		action.Reason = "already gone"
	}

	e.cache.remove(codeID)
	e.report.Record(action)
	e.log.Info("Deleted access code",
		zap.String("key", key),
		zap.String("code_id", codeID),
		zap.String("reason", action.Reason),
	)
	return nil
}

// Dropped records removal of a record that had no remote code.
func (e *Executor) Dropped(key string, lockID uint, reason string) {
	e.report.Record(Action{Type: ActionDelete, Key: key, LockID: lockID, Reason: reason})
	e.log.Debug("Dropped record without code", zap.String("key", key), zap.String("reason", reason))
}

// Skip records a key left untouched.
func (e *Executor) Skip(key string, lockID uint, reason string) {
	e.report.Record(Action{Type: ActionSkip, Key: key, LockID: lockID, Reason: reason})
	e.log.Debug("Skipped key", zap.String("key", key), zap.String("reason", reason))
}

// Fail records a failure not tied to a provider call, such as a store write.
func (e *Executor) Fail(t ActionType, key string, lockID uint, err error) {
	e.fail(Action{Type: t, Key: key, LockID: lockID}, err)
}

func (e *Executor) fail(a Action, err error) {
	e.report.Fail(a, err)
	e.log.Error("Reconciliation step failed",
		zap.String("action", string(a.Type)),
		zap.String("key", a.Key),
		zap.Uint("lock_id", a.LockID),
		zap.Error(err),
	)
}

// claim notes that key wants pin on device and warns when another key of
// this run already wanted the same PIN there. The later key wins.
func (e *Executor) claim(deviceID, pin, key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	slot := deviceID + "|" + pin
	if prev, ok := e.claims[slot]; ok && prev != key {
		e.log.Warn("PIN collision on device",
			zap.String("device_id", deviceID),
			zap.String("previous_key", prev),
			zap.String("key", key),
		)
	}
	e.claims[slot] = key
}
