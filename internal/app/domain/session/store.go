package session

import "sync"

// TokenStore is the single source of truth for the bearer credential pair
// used on authenticated upstream requests. Implementations perform no
// network I/O and cannot fail; persistence is the repository's job.
type TokenStore interface {
	// GetAccessToken returns the stored access token, or "" when the
	// session is anonymous. Never errors.
	GetAccessToken() string
	// GetRefreshToken returns the stored refresh token, or "".
	GetRefreshToken() string
	// SetTokens overwrites any existing token pair.
	SetTokens(access, refresh string)
	// ClearTokens removes both tokens. Idempotent.
	ClearTokens()
	// AuthorizedHeaders returns {"Authorization": "Bearer <token>"} or an
	// empty map when no token is present, so callers can merge the result
	// unconditionally without branching.
	AuthorizedHeaders() map[string]string
}

var _ TokenStore = (*Store)(nil)

// Store is the in-memory TokenStore bound to one browser session for the
// duration of a request. Reads happen from concurrent request flows, writes
// only on login/logout/401 paths.
type Store struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewStore returns a Store holding the given pair. Empty strings make an
// anonymous store.
func NewStore(access, refresh string) *Store {
	return &Store{access: access, refresh: refresh}
}

func (s *Store) GetAccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Store) GetRefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *Store) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}

func (s *Store) AuthorizedHeaders() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.access}
}
