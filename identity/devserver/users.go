package devserver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Default HR account created when the user table is empty
const (
	DefaultHRUsername = "hr_user"
	DefaultHRPassword = "hr123"
)

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // never serialize
	Role         roles.Role `json:"role"`
}

type UserStore interface {
	Add(username, password string, role roles.Role) (*User, error)
	ByUsername(username string) (*User, error)
	Count() int
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var _ UserStore = (*InMemoryUsers)(nil)

type InMemoryUsers struct {
	lock   sync.RWMutex
	users  map[string]*User
	nextID int64
}

func NewInMemoryUsers() *InMemoryUsers {
	return &InMemoryUsers{users: make(map[string]*User), nextID: 1}
}

func (u *InMemoryUsers) Add(username, password string, role roles.Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("[InMemoryUsers Add] username and password are required")
	}
	if !role.Valid() {
		return nil, errors.Wrapf(errors.ErrUnknownRole, "[InMemoryUsers Add] %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[InMemoryUsers Add] failed to hash password: %w", err)
	}

	u.lock.Lock()
	defer u.lock.Unlock()

	if _, ok := u.users[username]; ok {
		return nil, fmt.Errorf("[InMemoryUsers Add] user %q already exists", username)
	}
	user := &User{ID: u.nextID, Username: username, PasswordHash: hash, Role: role}
	u.nextID++
	u.users[username] = user
	return user, nil
}

func (u *InMemoryUsers) ByUsername(username string) (*User, error) {
	u.lock.RLock()
	defer u.lock.RUnlock()

	user, ok := u.users[username]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return user, nil
}

func (u *InMemoryUsers) Count() int {
	u.lock.RLock()
	defer u.lock.RUnlock()
	return len(u.users)
}

// SeedDefault adds the default HR account if no users exist yet
func SeedDefault(store UserStore) error {
	if store.Count() > 0 {
		return nil
	}
	if _, err := store.Add(DefaultHRUsername, DefaultHRPassword, roles.HR); err != nil {
		return fmt.Errorf("[devserver SeedDefault] %w", err)
	}
	return nil
}

type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// LoadSeedFile adds the users listed in a YAML file:
//
//	users:
//	  - username: mary
//	    password: manager123
//	    role: manager
func LoadSeedFile(store UserStore, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("[devserver LoadSeedFile] failed to read %s: %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("[devserver LoadSeedFile] failed to parse %s: %w", path, err)
	}

	for i, u := range seed.Users {
		role, err := roles.Parse(u.Role)
		if err != nil {
			return i, fmt.Errorf("[devserver LoadSeedFile] user %q: %w", u.Username, err)
		}
		if _, err := store.Add(u.Username, u.Password, role); err != nil {
			return i, err
		}
	}
	return len(seed.Users), nil
}
