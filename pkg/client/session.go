package client

import "sync"

// session holds the access token in memory only. The generation counter
// changes on every token update so callers can tell whether the token they
// failed with has already been replaced.
type session struct {
	mu    sync.RWMutex
	token string
	gen   uint64
}

func (s *session) current() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.gen
}

func (s *session) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.gen++
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.gen++
}
