// Package memory provides an in-process ports.Gateway for tests and throwaway sessions.
package memory

import (
	"context"
	"sync"
)

type Gateway struct {
	mu     sync.RWMutex
	data   map[string]string
	writes int

	// FailSet, when set, is consulted before every Set; a non-nil result aborts the write.
	FailSet func(key, value string) error
	// FailGet, when set, is consulted before every Get.
	FailGet func(key string) error
}

func NewGateway() *Gateway {
	return &Gateway{data: make(map[string]string)}
}

func (g *Gateway) Get(_ context.Context, key string) (string, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.FailGet != nil {
		if err := g.FailGet(key); err != nil {
			return "", false, err
		}
	}
	v, ok := g.data[key]
	return v, ok, nil
}

func (g *Gateway) Set(_ context.Context, key string, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailSet != nil {
		if err := g.FailSet(key, value); err != nil {
			return err
		}
	}
	g.data[key] = value
	g.writes++
	return nil
}

// Raw returns the stored value without going through a store. Used by tests to inspect blobs.
func (g *Gateway) Raw(key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.data[key]
	return v, ok
}

// Put seeds a raw value, bypassing FailSet.
func (g *Gateway) Put(key, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data[key] = value
}

// Writes counts successful Set calls.
func (g *Gateway) Writes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.writes
}
