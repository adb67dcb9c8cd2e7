package identity

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Seed describes one account provisioned at startup.
type Seed struct {
	Username string
	Password string
	Avatar   string
}

// DefaultSeeds is the fixed account list the deployment ships with.
func DefaultSeeds() []Seed {
	return []Seed{
		{Username: "Yahyo", Password: "1095508Yasd", Avatar: "/avatars/yahyo.jpg"},
		{Username: "Fedya", Password: "Fedya123", Avatar: "/avatars/fedya.jpg"},
		{Username: "Boyka", Password: "Boyka123", Avatar: "/avatars/boyka.jpg"},
	}
}

// User is the read-only view handed out after a successful Verify.
type User struct {
	Username string
	Avatar   string
}

type record struct {
	hash   []byte
	avatar string
}

// Store holds the seeded accounts. Credential hashes are computed once in
// NewStore; the avatar reference is the only mutable field and lives for the
// process lifetime only — a restart reverts every avatar to its seed value.
type Store struct {
	mu    sync.RWMutex
	users map[string]*record
	order []string
}

// NewStore hashes every seed credential up front. The call blocks until all
// hashes are computed; the server must not accept logins before it returns.
func NewStore(seeds []Seed) (*Store, error) {
	s := &Store{users: make(map[string]*record, len(seeds))}
	for _, seed := range seeds {
		if seed.Username == "" {
			return nil, fmt.Errorf("identity: seed with empty username")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("identity: hash credential for %s: %w", seed.Username, err)
		}
		s.users[seed.Username] = &record{hash: hash, avatar: seed.Avatar}
		s.order = append(s.order, seed.Username)
	}
	return s, nil
}

// Verify checks the credentials against the seeded set. An unknown username
// and a wrong password both return ok=false; callers cannot tell them apart.
func (s *Store) Verify(username, password string) (User, bool) {
	s.mu.RLock()
	rec, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) != nil {
		return User{}, false
	}
	s.mu.RLock()
	avatar := rec.avatar
	s.mu.RUnlock()
	return User{Username: username, Avatar: avatar}, true
}

// Usernames returns every seeded username in seed order.
func (s *Store) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Avatars returns the current username -> avatar reference mapping.
func (s *Store) Avatars() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.users))
	for name, rec := range s.users {
		out[name] = rec.avatar
	}
	return out
}

// SetAvatar replaces the user's avatar reference, latest wins. It reports
// false for usernames outside the seeded set.
func (s *Store) SetAvatar(username, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[username]
	if !ok {
		return false
	}
	rec.avatar = url
	return true
}
