package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ryavnn/Employee-Management-system/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of Store
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry // "<clientID>/token" and "<clientID>/user"
	maxAge  time.Duration
	now     func() time.Time
}

type entry struct {
	token    string
	identity *Identity
	storedAt time.Time
}

// NewInMemoryStore creates a new in-memory credential store. A maxAge of
// zero keeps credentials until they are cleared.
func NewInMemoryStore(maxAge time.Duration) *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]entry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Get retrieves the credential stored for a client
func (s *InMemoryStore) Get(_ context.Context, clientID string) (Credential, error) {
	if clientID == "" {
		return Credential{}, fmt.Errorf("[InMemoryStore Get] %w", errors.ErrInvalidClientID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.entries[entryKey(clientID, TokenKey)]
	if !ok || tok.token == "" {
		return Credential{}, errors.ErrNoCredential
	}
	if s.expired(tok, s.now()) {
		delete(s.entries, entryKey(clientID, TokenKey))
		delete(s.entries, entryKey(clientID, UserKey))
		return Credential{}, errors.ErrNoCredential
	}

	cred := Credential{Token: tok.token, StoredAt: tok.storedAt}
	if user, ok := s.entries[entryKey(clientID, UserKey)]; ok && user.identity != nil {
		id := *user.identity
		cred.Identity = &id
	}
	return cred, nil
}

// Set stores the token and the cached identity for a client
func (s *InMemoryStore) Set(_ context.Context, clientID string, cred Credential) error {
	if clientID == "" {
		return fmt.Errorf("[InMemoryStore Set] %w", errors.ErrInvalidClientID)
	}
	if cred.Token == "" {
		return fmt.Errorf("[InMemoryStore Set] token is required")
	}

	storedAt := cred.StoredAt
	if storedAt.IsZero() {
		storedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.entries[entryKey(clientID, TokenKey)] = entry{token: cred.Token, storedAt: storedAt}
	if cred.Identity != nil {
		id := *cred.Identity
		s.entries[entryKey(clientID, UserKey)] = entry{identity: &id, storedAt: storedAt}
	} else {
		delete(s.entries, entryKey(clientID, UserKey))
	}
	return nil
}

// Clear removes the token and cached identity for a client
func (s *InMemoryStore) Clear(_ context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("[InMemoryStore Clear] %w", errors.ErrInvalidClientID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryKey(clientID, TokenKey))
	delete(s.entries, entryKey(clientID, UserKey))
	return nil
}

func (s *InMemoryStore) expired(e entry, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(e.storedAt) > s.maxAge
}

// sweep drops every expired entry. Callers hold s.mu.
func (s *InMemoryStore) sweep() {
	if s.maxAge <= 0 {
		return
	}
	now := s.now()
	for key, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, key)
		}
	}
}
