// Package stubserver is an in-memory stand-in for the SOIN backend. It
// implements the HTTP contract the client consumes so the client can be
// developed and integration-tested without the real service. Nothing is
// persisted; state lives for the lifetime of the process.
package stubserver

import (
	"errors"
	"sync"
	"time"

	"soin-client/internal/models"
)

// ErrEmailTaken is returned when registering an email twice.
var ErrEmailTaken = errors.New("email already registered")

// User is a stored account. PasswordHash is bcrypt.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         models.Role
	Age          *int
	Approval     models.ApprovalStatus
	CreatedAt    time.Time
}

// Identity converts the stored user to its wire representation.
func (u *User) Identity() models.Identity {
	return models.Identity{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Age:            u.Age,
		ApprovalStatus: u.Approval,
	}
}

// Store holds all stub state behind one mutex. Request volume is a
// single developer, so contention is not a concern.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*User
	byEmail     map[string]string
	userOrder   []string
	submissions []models.Submission
	uploads     map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		uploads: make(map[string][]byte),
	}
}

// AddUser registers a user. Fails only on a duplicate email.
func (s *Store) AddUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return ErrEmailTaken
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

// UserByEmail looks an account up for login.
func (s *Store) UserByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// UserByID resolves a token's subject.
func (s *Store) UserByID(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// PendingDoctors lists unreviewed doctor accounts in registration order.
func (s *Store) PendingDoctors() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, id := range s.userOrder {
		u := s.users[id]
		if u.Role == models.RoleDoctor && u.Approval == models.ApprovalPending {
			out = append(out, u)
		}
	}
	return out
}

// SetApproval records the admin's decision on a doctor account.
func (s *Store) SetApproval(id string, status models.ApprovalStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != models.RoleDoctor {
		return false
	}
	u.Approval = status
	return true
}

// AddSubmission appends a new intake record.
func (s *Store) AddSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
}

// Submissions returns all records, or only one patient's when patientID
// is non-empty. Insertion order is preserved.
func (s *Store) Submissions(patientID string) []models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if patientID == "" || sub.PatientID == patientID {
			out = append(out, sub)
		}
	}
	return out
}

// Stats computes the admin dashboard counters.
func (s *Store) Stats() (patients, doctors, pendingDoctors, submissions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		switch u.Role {
		case models.RolePatient:
			patients++
		case models.RoleDoctor:
			doctors++
			if u.Approval == models.ApprovalPending {
				pendingDoctors++
			}
		}
	}
	return patients, doctors, pendingDoctors, len(s.submissions)
}

// SaveUpload stores raw image bytes under a generated name.
func (s *Store) SaveUpload(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[name] = data
}

// Upload fetches stored image bytes.
func (s *Store) Upload(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.uploads[name]
	return data, ok
}

// Uploads snapshots every stored image for the export archive.
func (s *Store) Uploads() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.uploads))
	for name, data := range s.uploads {
		out[name] = data
	}
	return out
}

// UsersSnapshot lists every account in registration order for export.
func (s *Store) UsersSnapshot() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out
}
