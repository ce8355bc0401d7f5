package reconcile

import (
	"sync"
	"time"
)

// Scope names the record kind a report covers.
type Scope string

const (
	// ScopeSnapshot covers stale stay cleanup after a snapshot.
	ScopeSnapshot Scope = "snapshot"
	// ScopeRoom covers per-room stay codes.
	ScopeRoom Scope = "room"
	// ScopeCommon covers common-area bindings.
	ScopeCommon Scope = "common"
	// ScopeRoomBlock covers room-block codes.
	ScopeRoomBlock Scope = "room_block"
)

// ActionType represents the kind of remote convergence step taken for a key.
type ActionType string

const (
	// ActionCreate programs a new code on a lock.
	ActionCreate ActionType = "create"
	// ActionAdopt records a code already present on the lock.
	ActionAdopt ActionType = "adopt"
	// ActionUpdate moves an existing code's validity window.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a code, or a record that no longer needs one.
	ActionDelete ActionType = "delete"
	// ActionSkip marks a key that was left untouched this run.
	ActionSkip ActionType = "skip"
)

// Action represents one step taken (or planned, in a dry run) for a key.
type Action struct {
	// Type specifies the action performed.
	Type ActionType `json:"type"`

	// Key is the domain key: stay id, reservation/lock pair or block id.
	Key string `json:"key"`

	// LockID is the registry id of the lock involved, if any.
	LockID uint `json:"lock_id,omitempty"`

	// CodeID is the provider's access code reference, if known.
	CodeID string `json:"code_id,omitempty"`

	// Reason explains why this action was taken.
	Reason string `json:"reason,omitempty"`

	// Error holds the remote error text for failed actions.
	Error string `json:"error,omitempty"`

	// Planned is true when the action was computed in a dry run and not executed.
	Planned bool `json:"planned,omitempty"`
}

// Failed reports whether the action did not complete.
func (a Action) Failed() bool {
	return a.Error != ""
}

// Summary provides aggregate counts for a report.
type Summary struct {
	Created int `json:"created"`
	Adopted int `json:"adopted"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Report collects the actions of one scope within a run.
type Report struct {
	Scope      Scope     `json:"scope"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
	Actions    []Action  `json:"actions"`

	mu sync.Mutex
}

// NewReport starts a report for scope.
func NewReport(scope Scope, dryRun bool, now time.Time) *Report {
	return &Report{
		Scope:     scope,
		DryRun:    dryRun,
		StartedAt: now,
		Actions:   []Action{},
	}
}

// Record appends an action and updates the summary.
func (r *Report) Record(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.DryRun {
		a.Planned = a.Type != ActionSkip
	}
	r.Actions = append(r.Actions, a)

	if a.Failed() {
		r.Summary.Failed++
		return
	}
	switch a.Type {
	case ActionCreate:
		r.Summary.Created++
	case ActionAdopt:
		r.Summary.Adopted++
	case ActionUpdate:
		r.Summary.Updated++
	case ActionDelete:
		r.Summary.Deleted++
	case ActionSkip:
		r.Summary.Skipped++
	}
}

// Fail records a failed action carrying err's text.
func (r *Report) Fail(a Action, err error) {
	if err != nil {
		a.Error = err.Error()
	}
	r.Record(a)
}

// Finish stamps the completion time.
func (r *Report) Finish(now time.Time) {
	r.mu.Lock()
	r.FinishedAt = now
	r.mu.Unlock()
}

// Count returns how many recorded actions have the given type and did not fail.
func (r *Report) Count(t ActionType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.Actions {
		if a.Type == t && !a.Failed() {
			n++
		}
	}
	return n
}
