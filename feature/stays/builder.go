package stays

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"access-sync/core/cloudbeds"
	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/feature/locks"

	"go.uber.org/zap"
)

// Source is the reservation source read by the builder.
type Source interface {
	Window(today time.Time) (from, to string)
	ListReservations(ctx context.Context, from, to string) ([]json.RawMessage, error)
	GetReservationDetails(ctx context.Context, ids []string) ([]json.RawMessage, error)
}

// Archiver stores a copy of each snapshot. Optional.
type Archiver interface {
	PutJSON(ctx context.Context, objectName string, v any) error
}

// LockLookup resolves a room to its lock.
type LockLookup interface {
	RoomLocks(ctx context.Context) (map[string]locks.Lock, error)
}

// Snapshot is the result of one complete read of the reservation source.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	FetchedAt time.Time `json:"fetched_at"`
	From      string    `json:"from"`
	To        string    `json:"to"`

	// Stays holds one entry per fresh key, carrying any stored code reference.
	Stays []Stay `json:"-"`
	// Keys is the fresh key set.
	Keys map[string]struct{} `json:"-"`
	// Protected holds reservations whose detail record was unusable this run;
	// their stored stays are neither refreshed nor cleaned up.
	Protected map[string]struct{} `json:"-"`

	Reservations int `json:"reservations"`
	Rejected     int `json:"rejected"`

	raw []json.RawMessage
}

// Builder pulls reservations from the source and maintains the stay table.
type Builder struct {
	source  Source
	store   *Store
	locks   LockLookup
	archive Archiver
	logger  *zap.Logger
}

// NewBuilder creates a builder. archive may be nil.
func NewBuilder(source Source, store *Store, lookup LockLookup, archive Archiver, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		source:  source,
		store:   store,
		locks:   lookup,
		archive: archive,
		logger:  logger,
	}
}

// Store returns the stay store.
func (b *Builder) Store() *Store {
	return b.store
}

// Fetch reads the full snapshot without writing anything. Any listing or
// detail failure aborts it; malformed records are logged and skipped.
func (b *Builder) Fetch(ctx context.Context, runID string, now time.Time, rules *property.Rules) (*Snapshot, error) {
	from, to := b.source.Window(rules.Today(now))
	snap := &Snapshot{
		RunID:     runID,
		FetchedAt: now,
		From:      from,
		To:        to,
		Keys:      make(map[string]struct{}),
		Protected: make(map[string]struct{}),
	}

	rows, err := b.source.ListReservations(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	ids := make([]string, 0, len(rows))
	listed := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		var sum cloudbeds.Summary
		if err := json.Unmarshal(row, &sum); err == nil {
			err = cloudbeds.Validate(&sum)
		}
		if err != nil || sum.ReservationID == "" {
			snap.Rejected++
			b.logger.Warn("Skipping malformed reservation listing row", zap.Error(err))
			continue
		}
		id := string(sum.ReservationID)
		if _, dup := listed[id]; dup {
			continue
		}
		listed[id] = struct{}{}
		ids = append(ids, id)
	}

	details, err := b.source.GetReservationDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch reservation details: %w", err)
	}
	snap.raw = details

	codes, err := b.store.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load code references: %w", err)
	}

	byKey := make(map[string]int)
	seen := make(map[string]struct{}, len(details))
	for _, raw := range details {
		res, err := cloudbeds.ParseReservation(raw)
		if err != nil {
			snap.Rejected++
			var probe cloudbeds.Summary
			if json.Unmarshal(raw, &probe) == nil && probe.ReservationID != "" {
				snap.Protected[string(probe.ReservationID)] = struct{}{}
			}
			b.logger.Warn("Skipping malformed reservation", zap.Error(err))
			continue
		}
		seen[string(res.ReservationID)] = struct{}{}
		snap.Reservations++

		for _, st := range FromReservation(res) {
			if code, ok := codes[st.ID]; ok {
				c := code
				st.AccessCodeID = &c
			}
			if i, dup := byKey[st.ID]; dup {
				snap.Stays[i] = st
				continue
			}
			byKey[st.ID] = len(snap.Stays)
			snap.Stays = append(snap.Stays, st)
			snap.Keys[st.ID] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			snap.Protected[id] = struct{}{}
		}
	}
	for id := range snap.Protected {
		if _, ok := seen[id]; ok {
			delete(snap.Protected, id)
		}
	}

	b.logger.Info("Fetched reservation snapshot",
		zap.String("run_id", runID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("reservations", snap.Reservations),
		zap.Int("stays", len(snap.Stays)),
		zap.Int("rejected", snap.Rejected),
	)
	return snap, nil
}

// Commit upserts the snapshot's stays.
func (b *Builder) Commit(ctx context.Context, snap *Snapshot) error {
	if err := b.store.Upsert(ctx, snap.Stays); err != nil {
		return fmt.Errorf("upsert stays: %w", err)
	}
	return nil
}

// Archive writes the raw snapshot to object storage. Failures are logged only.
func (b *Builder) Archive(ctx context.Context, snap *Snapshot) {
	if b.archive == nil {
		return
	}
	name := fmt.Sprintf("snapshots/%s/%s-%s.json",
		snap.FetchedAt.UTC().Format("2006/01/02"),
		snap.FetchedAt.UTC().Format("150405"),
		snap.RunID,
	)
	doc := struct {
		*Snapshot
		Data []json.RawMessage `json:"data"`
	}{Snapshot: snap, Data: snap.raw}

	if err := b.archive.PutJSON(ctx, name, doc); err != nil {
		b.logger.Warn("Archiving snapshot failed", zap.String("object", name), zap.Error(err))
		return
	}
	b.logger.Debug("Archived snapshot", zap.String("object", name))
}

// Cleanup removes stays that left the snapshot. A stay holding a code keeps
// its record until the remote code is gone; a stay without one is removed
// right away. Stays of protected reservations are left alone.
func (b *Builder) Cleanup(ctx context.Context, exec *reconcile.Executor, snap *Snapshot) error {
	stale, err := b.store.Stale(ctx, snap.Keys)
	if err != nil {
		return fmt.Errorf("load stale stays: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	roomLocks, err := b.locks.RoomLocks(ctx)
	if err != nil {
		return fmt.Errorf("load room locks: %w", err)
	}

	for _, st := range stale {
		if _, ok := snap.Protected[st.ReservationID]; ok {
			exec.Skip(st.ID, 0, "reservation record unusable this run")
			continue
		}

		if !st.HasCode() {
			if exec.DryRun() {
				exec.Dropped(st.ID, 0, "left source window")
				continue
			}
			if err := b.store.Delete(ctx, st.ID); err != nil {
				exec.Fail(reconcile.ActionDelete, st.ID, 0, err)
				continue
			}
			exec.Dropped(st.ID, 0, "left source window")
			continue
		}

		lock, ok := roomLocks[st.RoomID]
		if !ok {
			exec.Skip(st.ID, 0, "no lock for room "+st.RoomID)
			continue
		}

		// Failed and planned removals both keep the record for the next run.
		if err := exec.Remove(ctx, lock.Ref(), st.ID, st.Code(), "left source window"); err != nil {
			continue
		}
		if err := b.store.Delete(ctx, st.ID); err != nil {
			exec.Fail(reconcile.ActionDelete, st.ID, lock.ID, err)
		}
	}
	return nil
}

// Working returns the stays the reconcilers act on: the snapshot's stays plus
// the stored stays of protected reservations.
func (b *Builder) Working(ctx context.Context, snap *Snapshot) ([]Stay, error) {
	out := make([]Stay, 0, len(snap.Stays))
	out = append(out, snap.Stays...)
	if len(snap.Protected) == 0 {
		return out, nil
	}

	stored, err := b.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored stays: %w", err)
	}
	for _, st := range stored {
		if _, fresh := snap.Keys[st.ID]; fresh {
			continue
		}
		if _, ok := snap.Protected[st.ReservationID]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}
