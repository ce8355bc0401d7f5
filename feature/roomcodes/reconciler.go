package roomcodes

import (
	"context"
	"errors"
	"fmt"

	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/feature/locks"
	"access-sync/feature/stays"

	"go.uber.org/zap"
)

// CodeStore records a stay's code reference.
type CodeStore interface {
	SetCode(ctx context.Context, id string, codeID *string) error
}

// LockLookup returns room locks keyed by room id.
type LockLookup interface {
	RoomLocks(ctx context.Context) (map[string]locks.Lock, error)
}

// Reconciler converges per-room codes with the stay set.
type Reconciler struct {
	store  CodeStore
	locks  LockLookup
	rules  *property.Rules
	logger *zap.Logger
}

// NewReconciler creates a per-room reconciler.
func NewReconciler(store CodeStore, lookup LockLookup, rules *property.Rules, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, locks: lookup, rules: rules, logger: logger}
}

// Run converges every stay whose room has a lock, in three phases:
// revoke codes of stays no longer active, adopt or create codes for active
// stays without one, then refresh the window of every code held.
func (r *Reconciler) Run(ctx context.Context, exec *reconcile.Executor, working []stays.Stay) error {
	roomLocks, err := r.locks.RoomLocks(ctx)
	if err != nil {
		return fmt.Errorf("load room locks: %w", err)
	}

	type target struct {
		stay stays.Stay
		lock locks.Lock
	}
	targets := make([]*target, 0, len(working))
	for _, st := range working {
		lock, ok := roomLocks[st.RoomID]
		if !ok {
			continue
		}
		targets = append(targets, &target{stay: st, lock: lock})
	}

	refresh := make(map[string]bool, len(targets))

	// Revoke before create so no key is created and removed in one pass.
	for _, t := range targets {
		if !t.stay.HasCode() || r.rules.IsActive(t.stay.ResStatus) {
			continue
		}
		err := exec.Remove(ctx, t.lock.Ref(), t.stay.ID, t.stay.Code(), "reservation status "+t.stay.ResStatus)
		if err != nil {
			continue
		}
		if err := r.store.SetCode(ctx, t.stay.ID, nil); err != nil {
			exec.Fail(reconcile.ActionDelete, t.stay.ID, t.lock.ID, fmt.Errorf("clear code reference: %w", err))
			continue
		}
		t.stay.AccessCodeID = nil
	}

	for _, t := range targets {
		if t.stay.HasCode() {
			refresh[t.stay.ID] = r.rules.IsActive(t.stay.ResStatus)
			continue
		}
		if !r.rules.IsActive(t.stay.ResStatus) {
			continue
		}

		pin, err := r.rules.DerivePIN(t.stay.ReservationID)
		if err != nil {
			exec.Skip(t.stay.ID, t.lock.ID, err.Error())
			continue
		}
		window, err := r.rules.StayWindow(t.stay.RoomCheckIn, t.stay.RoomCheckOut)
		if err != nil {
			exec.Skip(t.stay.ID, t.lock.ID, err.Error())
			continue
		}

		out, err := exec.Ensure(ctx, t.lock.Ref(), reconcile.Desired{
			Key:    t.stay.ID,
			PIN:    pin,
			Name:   t.stay.GuestName,
			Window: window,
		})
		if err != nil {
			if !errors.Is(err, reconcile.ErrDryRun) && !errors.Is(err, reconcile.ErrWindowElapsed) {
				r.logger.Debug("Stay left without code", zap.String("stay_id", t.stay.ID), zap.Error(err))
			}
			continue
		}

		code := out.CodeID
		if err := r.store.SetCode(ctx, t.stay.ID, &code); err != nil {
			exec.Fail(reconcile.ActionCreate, t.stay.ID, t.lock.ID, fmt.Errorf("store code reference: %w", err))
			continue
		}
		t.stay.AccessCodeID = &code
		// Adopted codes may carry any window; created ones already match.
		if out.Adopted {
			refresh[t.stay.ID] = true
		}
	}

	for _, t := range targets {
		if !t.stay.HasCode() || !refresh[t.stay.ID] {
			continue
		}
		window, err := r.rules.StayWindow(t.stay.RoomCheckIn, t.stay.RoomCheckOut)
		if err != nil {
			exec.Skip(t.stay.ID, t.lock.ID, err.Error())
			continue
		}
		err = exec.Refresh(ctx, t.lock.Ref(), t.stay.ID, t.stay.Code(), window)
		if !errors.Is(err, reconcile.ErrCodeGone) {
			continue
		}
		// The next run adopts or creates again.
		if err := r.store.SetCode(ctx, t.stay.ID, nil); err != nil {
			exec.Fail(reconcile.ActionUpdate, t.stay.ID, t.lock.ID, fmt.Errorf("clear code reference: %w", err))
		}
	}

	return nil
}
