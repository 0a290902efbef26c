package fakecredentialstore

import (
	"context"
	"sync"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory store that counts calls, for tests
type FakeStore struct {
	creds map[string]credentials.Credential
	lock  sync.RWMutex

	Gets   int
	Sets   int
	Clears int

	GetErr   error
	ClearErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		creds: make(map[string]credentials.Credential),
	}
}

// Seed stores a credential without counting it as a Set call
func (fs *FakeStore) Seed(clientID string, cred credentials.Credential) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.creds[clientID] = cred
}

// Has reports whether a token is stored for the client
func (fs *FakeStore) Has(clientID string) bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	_, ok := fs.creds[clientID]
	return ok
}

// Calls returns the call counters under the lock
func (fs *FakeStore) Calls() (gets, sets, clears int) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.Gets, fs.Sets, fs.Clears
}

func (fs *FakeStore) Get(_ context.Context, clientID string) (credentials.Credential, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Gets++
	if fs.GetErr != nil {
		return credentials.Credential{}, fs.GetErr
	}
	cred, ok := fs.creds[clientID]
	if !ok {
		return credentials.Credential{}, errors.ErrNoCredential
	}
	return cred, nil
}

func (fs *FakeStore) Set(_ context.Context, clientID string, cred credentials.Credential) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Sets++
	fs.creds[clientID] = cred
	return nil
}

func (fs *FakeStore) Clear(_ context.Context, clientID string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.Clears++
	if fs.ClearErr != nil {
		return fs.ClearErr
	}
	delete(fs.creds, clientID)
	return nil
}
