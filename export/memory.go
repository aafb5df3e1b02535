package export

import (
	"context"
	"fmt"
	"sync"
)

// MemoryResolver serves templates from memory (tests and embedded assets).
type MemoryResolver struct {
	mu        sync.RWMutex
	templates map[string][]byte
}

// NewMemoryResolver creates an empty in-memory template resolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{templates: make(map[string][]byte)}
}

// Put stores template bytes under provider and path.
func (r *MemoryResolver) Put(provider, path string, data []byte) {
	r.mu.Lock()
	r.templates[memoryKey(provider, path)] = append([]byte(nil), data...)
	r.mu.Unlock()
}

// Resolve returns a copy of the stored template.
func (r *MemoryResolver) Resolve(ctx context.Context, provider, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	data, ok := r.templates[memoryKey(provider, path)]
	r.mu.RUnlock()
	if !ok {
		return nil, NewError(KindResourceNotFound, fmt.Sprintf("template %s/%s not found", provider, path), nil)
	}
	return append([]byte(nil), data...), nil
}

func memoryKey(provider, path string) string {
	return provider + "\x00" + path
}
