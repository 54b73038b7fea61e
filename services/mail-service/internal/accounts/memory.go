package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stoik/mailhub/internal/models"
)

// MemoryStore keeps everything in process memory. Updates to one owner's
// accounts are serialized by that owner's mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*memoryUser
	byEmail map[string]uuid.UUID
}

type memoryUser struct {
	mu   sync.Mutex
	user models.ApplicationUser
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]*memoryUser),
		byEmail: make(map[string]uuid.UUID),
	}
}

// CreateUser registers a new application user.
func (s *MemoryStore) CreateUser(_ context.Context, user *models.ApplicationUser) error {
	email := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.LinkedAccounts = nil
	s.users[user.ID] = &memoryUser{user: stored}
	s.byEmail[email] = user.ID
	return nil
}

// GetUserByID returns a copy of the user including linked accounts.
func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.ApplicationUser, error) {
	u, ok := s.owner(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	user := u.user
	user.LinkedAccounts = append([]models.LinkedAccount(nil), u.user.LinkedAccounts...)
	return &user, nil
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.ApplicationUser, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

// Upsert inserts or merges a linked account under the owner's lock.
func (s *MemoryStore) Upsert(_ context.Context, ownerID uuid.UUID, externalID string, profile models.Profile, cred models.Credential) error {
	u, ok := s.owner(ownerID)
	if !ok {
		return ErrUserNotFound
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now().UTC()
	accounts := u.user.LinkedAccounts
	for i := range accounts {
		if accounts[i].ExternalID == externalID {
			accounts[i] = merge(accounts[i], profile, cred)
			accounts[i].UpdatedAt = now
			u.user.UpdatedAt = now
			return nil
		}
	}

	u.user.LinkedAccounts = append(accounts, models.LinkedAccount{
		ExternalID: externalID,
		Profile:    profile,
		Credential: cred,
		UpdatedAt:  now,
	})
	u.user.UpdatedAt = now
	return nil
}

// List returns public views of the owner's accounts.
func (s *MemoryStore) List(_ context.Context, ownerID uuid.UUID) ([]models.PublicAccountView, error) {
	u, ok := s.owner(ownerID)
	if !ok {
		return []models.PublicAccountView{}, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	views := make([]models.PublicAccountView, 0, len(u.user.LinkedAccounts))
	for _, acc := range u.user.LinkedAccounts {
		views = append(views, acc.Public())
	}
	return views, nil
}

// Remove deletes the account resolved by key.
func (s *MemoryStore) Remove(_ context.Context, ownerID uuid.UUID, key string) (bool, error) {
	u, ok := s.owner(ownerID)
	if !ok {
		return false, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	idx := matchIndex(u.user.LinkedAccounts, key)
	if idx < 0 {
		return false, nil
	}
	accounts := u.user.LinkedAccounts
	u.user.LinkedAccounts = append(accounts[:idx:idx], accounts[idx+1:]...)
	u.user.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Resolve returns a copy of the account matched by key, or nil.
func (s *MemoryStore) Resolve(_ context.Context, ownerID uuid.UUID, key string) (*models.LinkedAccount, error) {
	u, ok := s.owner(ownerID)
	if !ok {
		return nil, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	idx := matchIndex(u.user.LinkedAccounts, key)
	if idx < 0 {
		return nil, nil
	}
	acc := u.user.LinkedAccounts[idx]
	return &acc, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

func (s *MemoryStore) owner(id uuid.UUID) (*memoryUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}
