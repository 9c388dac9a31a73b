package config

import "sync/atomic"

// Store holds the current base configuration.
type Store struct {
	cur atomic.Pointer[Config]
}

// NewStore creates a store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Set(cfg)
	return s
}

// Current returns the current base configuration.
func (s *Store) Current() Config {
	if c := s.cur.Load(); c != nil {
		return *c
	}
	return Default()
}

// Set replaces the base configuration.
func (s *Store) Set(cfg Config) {
	s.cur.Store(&cfg)
}
