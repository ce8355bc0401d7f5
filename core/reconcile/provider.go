package reconcile

import (
	"context"
	"errors"

	"access-sync/core/seam"
)

var (
	// ErrNoCredential is returned when a lock's credential reference cannot be resolved.
	ErrNoCredential = errors.New("reconcile: no credential for lock")

	// ErrWindowElapsed is returned when a code is requested for a window that already ended.
	ErrWindowElapsed = errors.New("reconcile: window already elapsed")

	// ErrCodeGone is returned when a referenced code no longer exists on the
	// provider. Callers clear the reference so the next run adopts or creates.
	ErrCodeGone = errors.New("reconcile: code no longer on lock")

	// ErrDryRun is returned in place of a mutation that was only planned.
	ErrDryRun = errors.New("reconcile: dry run, mutation not executed")
)

// LockRef identifies a physical lock and the credential that operates it.
type LockRef struct {
	ID            uint
	DeviceID      string
	CredentialRef string
	Name          string
}

// CodeProvider is the lock provider surface the reconcilers drive.
type CodeProvider interface {
	ListAccessCodes(ctx context.Context, deviceID string) ([]seam.AccessCode, error)
	CreateAccessCode(ctx context.Context, params seam.CreateParams) (*seam.AccessCode, error)
	UpdateAccessCode(ctx context.Context, params seam.UpdateParams) error
	DeleteAccessCode(ctx context.Context, accessCodeID string) error
}

// Resolver maps a lock to an authenticated provider client.
type Resolver interface {
	Resolve(lock LockRef) (CodeProvider, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(lock LockRef) (CodeProvider, error)

// Resolve calls f(lock).
func (f ResolverFunc) Resolve(lock LockRef) (CodeProvider, error) {
	return f(lock)
}

// Static resolves every lock to the same provider.
func Static(p CodeProvider) Resolver {
	return ResolverFunc(func(LockRef) (CodeProvider, error) { return p, nil })
}
