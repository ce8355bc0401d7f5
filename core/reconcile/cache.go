package reconcile

import (
	"context"
	"sync"

	"access-sync/core/seam"

	"golang.org/x/sync/singleflight"
)

// codeCache holds the provider's code listing per device for one run.
// Listings are fetched once per device; later mutations in the same run
// are applied to the cached copy so adoption sees codes created earlier.
type codeCache struct {
	mu    sync.Mutex
	codes map[string][]seam.AccessCode
	sf    singleflight.Group
}

func newCodeCache() *codeCache {
	return &codeCache{codes: make(map[string][]seam.AccessCode)}
}

// list returns the cached listing for deviceID, fetching it on first use.
// Failed fetches are not cached.
func (c *codeCache) list(ctx context.Context, provider CodeProvider, deviceID string) ([]seam.AccessCode, error) {
	c.mu.Lock()
	codes, ok := c.codes[deviceID]
	c.mu.Unlock()
	if ok {
		return codes, nil
	}

	result, err, _ := c.sf.Do(deviceID, func() (interface{}, error) {
		c.mu.Lock()
		codes, ok := c.codes[deviceID]
		c.mu.Unlock()
		if ok {
			return codes, nil
		}

		fetched, err := provider.ListAccessCodes(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		if fetched == nil {
			fetched = []seam.AccessCode{}
		}

		c.mu.Lock()
		c.codes[deviceID] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]seam.AccessCode), nil
}

func (c *codeCache) add(deviceID string, code seam.AccessCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.codes[deviceID]; ok {
		c.codes[deviceID] = append(existing, code)
	}
}

func (c *codeCache) remove(codeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for device, codes := range c.codes {
		kept := codes[:0:0]
		for _, code := range codes {
			if code.ID != codeID {
				kept = append(kept, code)
			}
		}
		c.codes[device] = kept
	}
}
