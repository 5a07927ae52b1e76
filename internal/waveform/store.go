// SPDX-License-Identifier: MIT
package waveform

import "sync"

// ResetFunc is called with the new Signal each time the Store is replaced.
type ResetFunc func(sig *Signal)

// Store holds the current Signal. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	signal *Signal
	resets []ResetFunc
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// OnReplace registers fn to run after every Replace.
func (s *Store) OnReplace(fn ResetFunc) {
	s.mu.Lock()
	s.resets = append(s.resets, fn)
	s.mu.Unlock()
}

// Replace swaps in sig and runs the reset hooks. Hooks run outside the
// store lock so they may read the Store.
func (s *Store) Replace(sig *Signal) {
	s.mu.Lock()
	s.signal = sig
	hooks := make([]ResetFunc, len(s.resets))
	copy(hooks, s.resets)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(sig)
	}
}

// Current returns the loaded Signal, or nil before the first load.
func (s *Store) Current() *Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signal
}

// Loaded reports whether a Signal has been stored.
func (s *Store) Loaded() bool {
	return s.Current() != nil
}
