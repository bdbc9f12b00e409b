package auth

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
	cost    int
}

func NewMemStore() *MemStore {
	return NewMemStoreWithCost(bcrypt.DefaultCost)
}

// NewMemStoreWithCost lets tests trade hash strength for speed.
func NewMemStoreWithCost(cost int) *MemStore {
	return &MemStore{byEmail: make(map[string]User), cost: cost}
}

func (s *MemStore) Create(email, password string) (User, error) {
	email = normalizeEmail(email)

	// hash outside the lock
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrEmailExists
	}

	u := User{ID: "u_" + uuid.NewString(), Email: email, Hash: hash}
	s.byEmail[email] = u
	return u, nil
}

func (s *MemStore) Verify(email, password string) (User, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *MemStore) Exists(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[normalizeEmail(email)]
	return ok
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail)
}

func (s *MemStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail = make(map[string]User)
}
