// Package reconciletest provides an in-memory lock provider for tests that
// run several reconciliation passes against the same remote state.
package reconciletest

import (
	"context"
	"fmt"
	"sync"

	"access-sync/core/seam"
)

// Provider keeps access codes in memory and counts every call.
type Provider struct {
	mu     sync.Mutex
	codes  map[string]seam.AccessCode
	nextID int

	Calls map[string]int
	Fail  map[string]error
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{
		codes: make(map[string]seam.AccessCode),
		Calls: make(map[string]int),
		Fail:  make(map[string]error),
	}
}

// Seed places a code on a device as if it had been created out of band.
func (p *Provider) Seed(deviceID, pin string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := fmt.Sprintf("seed_%d", p.nextID)
	p.codes[id] = seam.AccessCode{ID: id, DeviceID: deviceID, Code: pin}
	return id
}

// Code returns a stored code by id.
func (p *Provider) Code(id string) (seam.AccessCode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.codes[id]
	return c, ok
}

// Len returns the number of codes on deviceID.
func (p *Provider) Len(deviceID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.codes {
		if c.DeviceID == deviceID {
			n++
		}
	}
	return n
}

// ResetCalls clears the call counters.
func (p *Provider) ResetCalls() {
	p.mu.Lock()
	p.Calls = make(map[string]int)
	p.mu.Unlock()
}

func (p *Provider) ListAccessCodes(_ context.Context, deviceID string) ([]seam.AccessCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["list"]++
	if err := p.Fail["list"]; err != nil {
		return nil, err
	}
	var out []seam.AccessCode
	for _, c := range p.codes {
		if c.DeviceID == deviceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Provider) CreateAccessCode(_ context.Context, params seam.CreateParams) (*seam.AccessCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["create"]++
	if err := p.Fail["create"]; err != nil {
		return nil, err
	}
	p.nextID++
	starts, ends := params.StartsAt, params.EndsAt
	code := seam.AccessCode{
		ID:       fmt.Sprintf("code_%d", p.nextID),
		DeviceID: params.DeviceID,
		Code:     params.Code,
		Name:     params.Name,
		StartsAt: &starts,
		EndsAt:   &ends,
	}
	p.codes[code.ID] = code
	return &code, nil
}

func (p *Provider) UpdateAccessCode(_ context.Context, params seam.UpdateParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["update"]++
	if err := p.Fail["update"]; err != nil {
		return err
	}
	code, ok := p.codes[params.AccessCodeID]
	if !ok {
		return &seam.APIError{Op: "update", StatusCode: 404, Body: "access code not found"}
	}
	starts, ends := params.StartsAt, params.EndsAt
	code.StartsAt, code.EndsAt = &starts, &ends
	p.codes[code.ID] = code
	return nil
}

func (p *Provider) DeleteAccessCode(_ context.Context, accessCodeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls["delete"]++
	if err := p.Fail["delete"]; err != nil {
		return err
	}
	if _, ok := p.codes[accessCodeID]; !ok {
		return &seam.APIError{Op: "delete", StatusCode: 404, Body: "access code not found"}
	}
	delete(p.codes, accessCodeID)
	return nil
}
