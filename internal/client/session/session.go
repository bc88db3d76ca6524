// Package session holds the process-wide connectivity flag and the signed-in
// identity. It is passed explicitly to every component that needs it.
package session

import (
	"errors"
	"sync"
)

var (
	// ErrOffline is returned when an operation needs the remote store while offline
	ErrOffline = errors.New("offline")

	// ErrNoSession is returned when an operation needs a signed-in user
	ErrNoSession = errors.New("not signed in")
)

// State is the connectivity and identity state of the device
type State struct {
	ownerID  string
	username string
	token    string
	online   bool
	mu       sync.RWMutex
}

// New creates an offline, signed-out state
func New() *State {
	return &State{}
}

// Online reports whether the remote store is believed reachable
func (s *State) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// SetOnline records reachability and returns the previous value
func (s *State) SetOnline(online bool) (previous bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.online
	s.online = online
	return previous
}

// SignIn stores the identity of the signed-in user
func (s *State) SignIn(ownerID, username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = ownerID
	s.username = username
	s.token = token
}

// SignOut forgets the identity. Connectivity is left as is.
func (s *State) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = ""
	s.username = ""
	s.token = ""
}

// OwnerID returns the signed-in user id, empty when signed out
func (s *State) OwnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerID
}

// Username returns the signed-in username
func (s *State) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Token returns the access token, empty when signed out
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RequireOwner returns the owner id or ErrNoSession
func (s *State) RequireOwner() (string, error) {
	owner := s.OwnerID()
	if owner == "" {
		return "", ErrNoSession
	}
	return owner, nil
}
