package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachingClient memoizes successful tag listings and digests of an inner
// Client. Concurrent lookups of the same key share a single round trip.
type CachingClient struct {
	inner Client

	mu      sync.RWMutex
	tags    map[string][]string
	digests map[string]string

	group singleflight.Group
}

// NewCachingClient wraps inner.
func NewCachingClient(inner Client) *CachingClient {
	return &CachingClient{
		inner:   inner,
		tags:    make(map[string][]string),
		digests: make(map[string]string),
	}
}

// ListTags implements Client.
func (c *CachingClient) ListTags(ctx context.Context, repository string) ([]string, error) {
	c.mu.RLock()
	tags, ok := c.tags[repository]
	c.mu.RUnlock()
	if ok {
		return append([]string(nil), tags...), nil
	}

	v, err, _ := c.group.Do("tags\x00"+repository, func() (interface{}, error) {
		tags, err := c.inner.ListTags(ctx, repository)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tags[repository] = tags
		c.mu.Unlock()
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// DigestFor implements Client.
func (c *CachingClient) DigestFor(ctx context.Context, repository, tag string) (string, error) {
	key := repository + ":" + tag

	c.mu.RLock()
	digest, ok := c.digests[key]
	c.mu.RUnlock()
	if ok {
		return digest, nil
	}

	v, err, _ := c.group.Do("digest\x00"+key, func() (interface{}, error) {
		digest, err := c.inner.DigestFor(ctx, repository, tag)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.digests[key] = digest
		c.mu.Unlock()
		return digest, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
