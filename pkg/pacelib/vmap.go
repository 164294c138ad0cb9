package pacelib

import "sync"

// VMap is a thread-safe generic map with read-write mutex protection.
// The daemon uses it for its per-surface limiter registry.
type VMap[kT comparable, vT any] struct {
	kv map[kT]vT
	mu sync.RWMutex
}

// NewVMap creates and returns a new empty VMap with an initialized
// internal map.
func NewVMap[kT comparable, vT any]() VMap[kT, vT] {
	return VMap[kT, vT]{
		kv: make(map[kT]vT),
	}
}

// Set stores a value for the given key with write lock protection.
func (vm *VMap[kT, vT]) Set(key kT, val vT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.kv[key] = val
}

// Get retrieves a value for the given key with read lock protection.
// The second return reports whether the key was present.
func (vm *VMap[kT, vT]) Get(key kT) (vT, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	val, ok := vm.kv[key]
	return val, ok
}

// Delete removes a key from the map. Missing keys are a no-op.
func (vm *VMap[kT, vT]) Delete(key kT) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.kv, key)
}

// Len returns the number of entries.
func (vm *VMap[kT, vT]) Len() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.kv)
}

// Keys returns a snapshot of all keys, in map order.
func (vm *VMap[kT, vT]) Keys() []kT {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	keys := make([]kT, 0, len(vm.kv))
	for k := range vm.kv {
		keys = append(keys, k)
	}
	return keys
}

// Range iterates over all key-value pairs with read lock protection.
// If f returns false, iteration stops early. f must not modify the map.
func (vm *VMap[kT, vT]) Range(f func(key kT, val vT) bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for k, v := range vm.kv {
		if !f(k, v) {
			return
		}
	}
}
