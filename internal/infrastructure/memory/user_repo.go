package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu      sync.Mutex
	users   map[string]domain.User
	byEmail map[string]string
	tokens  map[string]domain.MagicToken // keyed by hash
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]domain.MagicToken),
		now:     time.Now,
	}
}

// WithClock replaces the timestamp source. Meant for tests.
func (r *UserRepository) WithClock(now func() time.Time) *UserRepository {
	r.now = now
	return r
}

func (r *UserRepository) Upsert(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		now := r.now()
		r.users[userID] = domain.User{ID: userID, CreatedAt: now, UpdatedAt: now}
	}
	return nil
}

func (r *UserRepository) FindOrCreate(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if id, ok := r.byEmail[email]; ok {
		u := r.users[id]
		u.UpdatedAt = now
		r.users[id] = u
		return &u, nil
	}

	e := email
	u := domain.User{ID: uuid.NewString(), Email: &e, CreatedAt: now, UpdatedAt: now}
	r.users[u.ID] = u
	r.byEmail[email] = u.ID
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) CreateMagicToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	r.tokens[tokenHash] = domain.MagicToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: r.now(),
	}
	return nil
}

// ClaimMagicToken marks the token used under the lock, so a link is redeemed once.
func (r *UserRepository) ClaimMagicToken(_ context.Context, tokenHash string) (*domain.MagicToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	mt, ok := r.tokens[tokenHash]
	if !ok || mt.UsedAt != nil || !mt.ExpiresAt.After(now) {
		return nil, domain.ErrTokenInvalid
	}
	mt.UsedAt = &now
	r.tokens[tokenHash] = mt
	return &mt, nil
}

func (r *UserRepository) PurgeMagicTokens(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, mt := range r.tokens {
		if n >= int64(limit) {
			break
		}
		if mt.ExpiresAt.Before(cutoff) || (mt.UsedAt != nil && mt.UsedAt.Before(cutoff)) {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}
