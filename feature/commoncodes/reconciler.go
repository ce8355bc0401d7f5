package commoncodes

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/feature/locks"
	"access-sync/feature/stays"

	"go.uber.org/zap"
)

// LockLookup lists registry locks.
type LockLookup interface {
	ByCategory(ctx context.Context, category locks.Category) ([]locks.Lock, error)
	ByID(ctx context.Context) (map[uint]locks.Lock, error)
}

// Reservation is the reservation-level view of active stays.
type Reservation struct {
	ID        string
	GuestName string
	CheckIn   string
	CheckOut  string
}

// ActiveReservations collapses stays into their active reservations, ordered by id.
func ActiveReservations(working []stays.Stay, rules *property.Rules) []Reservation {
	byID := make(map[string]Reservation)
	for _, st := range working {
		if !rules.IsActive(st.ResStatus) {
			continue
		}
		if _, ok := byID[st.ReservationID]; ok {
			continue
		}
		byID[st.ReservationID] = Reservation{
			ID:        st.ReservationID,
			GuestName: st.GuestName,
			CheckIn:   st.ResCheckIn,
			CheckOut:  st.ResCheckOut,
		}
	}
	out := make([]Reservation, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Key names a (reservation, lock) pair in reports and logs.
func Key(reservationID string, lockID uint) string {
	return fmt.Sprintf("%s@%d", reservationID, lockID)
}

type pair struct {
	res  string
	lock uint
}

// Reconciler gives every active reservation one code on every common lock.
type Reconciler struct {
	store  *Store
	locks  LockLookup
	rules  *property.Rules
	logger *zap.Logger
}

// NewReconciler creates a common-area reconciler.
func NewReconciler(store *Store, lookup LockLookup, rules *property.Rules, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, locks: lookup, rules: rules, logger: logger}
}

// Run converges bindings in three phases: delete bindings no longer wanted,
// adopt or create missing ones, then refresh every confirmed window.
func (r *Reconciler) Run(ctx context.Context, exec *reconcile.Executor, working []stays.Stay) error {
	common, err := r.locks.ByCategory(ctx, locks.CategoryCommon)
	if err != nil {
		return fmt.Errorf("load common locks: %w", err)
	}
	allLocks, err := r.locks.ByID(ctx)
	if err != nil {
		return fmt.Errorf("load locks: %w", err)
	}
	bindings, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}

	active := ActiveReservations(working, r.rules)
	activeByID := make(map[string]Reservation, len(active))
	for _, res := range active {
		activeByID[res.ID] = res
	}
	commonByID := make(map[uint]locks.Lock, len(common))
	for _, l := range common {
		commonByID[l.ID] = l
	}

	current := make(map[pair]CommonCode, len(bindings))

	// Phase 1: delete.
	for _, b := range bindings {
		key := Key(b.ReservationID, b.LockID)
		_, resActive := activeByID[b.ReservationID]
		_, lockCommon := commonByID[b.LockID]
		if resActive && lockCommon {
			current[pair{b.ReservationID, b.LockID}] = b
			continue
		}

		lock, lockKnown := allLocks[b.LockID]
		switch {
		case !lockKnown:
			r.drop(ctx, exec, b, key, "lock no longer provisioned")
		case !b.HasCode():
			r.drop(ctx, exec, b, key, "reservation no longer active")
		default:
			if err := exec.Remove(ctx, lock.Ref(), key, b.Code(), "reservation no longer active"); err != nil {
				continue
			}
			if err := r.store.Delete(ctx, b.ID); err != nil {
				exec.Fail(reconcile.ActionDelete, key, b.LockID, err)
			}
		}
	}

	refresh := make(map[pair]string)
	for p, b := range current {
		if b.HasCode() {
			refresh[p] = b.Code()
		}
	}

	// Phase 2: create or adopt.
	for _, res := range active {
		pin, pinErr := r.rules.DerivePIN(res.ID)
		window, winErr := r.rules.StayWindow(res.CheckIn, res.CheckOut)

		for _, lock := range common {
			p := pair{res.ID, lock.ID}
			key := Key(res.ID, lock.ID)
			existing, hasBinding := current[p]
			if hasBinding && existing.HasCode() {
				continue
			}
			if pinErr != nil {
				exec.Skip(key, lock.ID, pinErr.Error())
				continue
			}
			if winErr != nil {
				exec.Skip(key, lock.ID, winErr.Error())
				continue
			}

			out, err := exec.Ensure(ctx, lock.Ref(), reconcile.Desired{
				Key:    key,
				PIN:    pin,
				Name:   "Reservation " + res.ID,
				Window: window,
			})
			switch {
			case errors.Is(err, reconcile.ErrDryRun), errors.Is(err, reconcile.ErrWindowElapsed):
				continue
			case err != nil:
				// Leave a marker so the pair is visibly pending; it is retried next run.
				if !hasBinding {
					if err := r.store.Save(ctx, res.ID, lock.ID, nil); err != nil {
						r.logger.Error("Saving pending binding failed", zap.String("key", key), zap.Error(err))
					}
				}
				continue
			}

			code := out.CodeID
			if err := r.store.Save(ctx, res.ID, lock.ID, &code); err != nil {
				exec.Fail(reconcile.ActionCreate, key, lock.ID, fmt.Errorf("store binding: %w", err))
				continue
			}
			if out.Adopted {
				refresh[p] = code
			}
		}
	}

	// Phase 3: refresh.
	pairs := make([]pair, 0, len(refresh))
	for p := range refresh {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].res != pairs[j].res {
			return pairs[i].res < pairs[j].res
		}
		return pairs[i].lock < pairs[j].lock
	})
	for _, p := range pairs {
		res := activeByID[p.res]
		lock := commonByID[p.lock]
		window, err := r.rules.StayWindow(res.CheckIn, res.CheckOut)
		if err != nil {
			exec.Skip(Key(p.res, p.lock), p.lock, err.Error())
			continue
		}
		err = exec.Refresh(ctx, lock.Ref(), Key(p.res, p.lock), refresh[p], window)
		if !errors.Is(err, reconcile.ErrCodeGone) {
			continue
		}
		// Keep the pair as a code-less marker so the next run adopts or creates.
		if err := r.store.Save(ctx, p.res, p.lock, nil); err != nil {
			exec.Fail(reconcile.ActionUpdate, Key(p.res, p.lock), p.lock, fmt.Errorf("clear code reference: %w", err))
		}
	}

	return nil
}

func (r *Reconciler) drop(ctx context.Context, exec *reconcile.Executor, b CommonCode, key, reason string) {
	if exec.DryRun() {
		exec.Dropped(key, b.LockID, reason)
		return
	}
	if err := r.store.Delete(ctx, b.ID); err != nil {
		exec.Fail(reconcile.ActionDelete, key, b.LockID, err)
		return
	}
	exec.Dropped(key, b.LockID, reason)
}
