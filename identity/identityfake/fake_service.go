package identityfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
)

var _ identity.Service = (*FakeService)(nil)

// FakeService answers CurrentUser from a token table and counts calls.
// When Gate is set, every call blocks until Gate is closed or the
// request context ends.
type FakeService struct {
	lock   sync.Mutex
	users  map[string]credentials.Identity
	errs   map[string]error
	calls  int
	tokens []string

	Gate    chan struct{}
	Started chan struct{}
}

func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]credentials.Identity),
		errs:  make(map[string]error),
	}
}

// AddUser makes token valid for the identity
func (fs *FakeService) AddUser(token string, id credentials.Identity) *FakeService {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.users[token] = id
	return fs
}

// FailWith makes calls with token return err
func (fs *FakeService) FailWith(token string, err error) *FakeService {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.errs[token] = err
	return fs
}

// Calls returns how many validations were requested
func (fs *FakeService) Calls() int {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.calls
}

// Tokens returns the tokens that were presented, in order
func (fs *FakeService) Tokens() []string {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return append([]string(nil), fs.tokens...)
}

func (fs *FakeService) CurrentUser(ctx context.Context, token string) (*credentials.Identity, error) {
	fs.lock.Lock()
	fs.calls++
	fs.tokens = append(fs.tokens, token)
	gate, started := fs.Gate, fs.Started
	fs.lock.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", errors.ErrServiceUnreachable, ctx.Err())
		}
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	if err, ok := fs.errs[token]; ok {
		return nil, err
	}
	id, ok := fs.users[token]
	if !ok {
		return nil, &identity.RejectedError{StatusCode: 401, Message: "Invalid or expired token", Err: errors.ErrCredentialInvalid}
	}
	return &id, nil
}
