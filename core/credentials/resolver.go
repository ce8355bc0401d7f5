package credentials

import (
	"fmt"
	"strings"
	"sync"

	"access-sync/core/reconcile"
	"access-sync/core/seam"
)

// LookupFunc returns the secret stored under name.
// os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// DefaultRef is used for locks that carry no credential reference.
const DefaultRef = "SEAM_API_KEY"

// EnvResolver maps a lock's credential reference to a provider client
// authenticated with the secret the reference names.
type EnvResolver struct {
	lookup LookupFunc
	cfg    seam.Config

	mu      sync.Mutex
	clients map[string]*seam.Client
}

// NewEnvResolver creates a resolver reading secrets through lookup.
func NewEnvResolver(cfg seam.Config, lookup LookupFunc) *EnvResolver {
	return &EnvResolver{
		lookup:  lookup,
		cfg:     cfg,
		clients: make(map[string]*seam.Client),
	}
}

// Resolve returns the client for lock, creating it on first use.
func (r *EnvResolver) Resolve(lock reconcile.LockRef) (reconcile.CodeProvider, error) {
	ref := strings.TrimSpace(lock.CredentialRef)
	if ref == "" {
		ref = DefaultRef
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[ref]; ok {
		return c, nil
	}

	key, ok := r.lookup(ref)
	if !ok || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: %s (device %s)", reconcile.ErrNoCredential, ref, lock.DeviceID)
	}

	c := seam.NewClient(r.cfg, key)
	r.clients[ref] = c
	return c, nil
}
