package holograph

// Close marks the store closed. Subsequent inserts, queries, and saves fail
// with ErrClosed. Close is idempotent.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
