package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached is a read-through LRU cache in front of another Store. Artifacts
// never change once saved, so entries never need invalidating.
type Cached struct {
	next  Store
	cache *lru.Cache[string, []byte]
}

// NewCached wraps next with a cache holding up to size artifacts.
func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Save(ctx context.Context, name string, content []byte) (string, error) {
	locator, err := c.next.Save(ctx, name, content)
	if err != nil {
		return "", err
	}
	c.cache.Add(name, append([]byte(nil), content...))
	return locator, nil
}

func (c *Cached) Read(ctx context.Context, name string) ([]byte, error) {
	if b, ok := c.cache.Get(name); ok {
		return append([]byte(nil), b...), nil
	}

	b, err := c.next.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, append([]byte(nil), b...))
	return b, nil
}

// Ping forwards to the wrapped store when it supports it.
func (c *Cached) Ping(ctx context.Context) error {
	if p, ok := c.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Len returns the number of cached artifacts.
func (c *Cached) Len() int {
	return c.cache.Len()
}
