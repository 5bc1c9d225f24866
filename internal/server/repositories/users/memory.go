package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository is a process-local Repository with the same uniqueness
// rules as the users table. It backs local runs and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]models.User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]models.User), nextID: 1}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.UserName == user.UserName {
			return nil, common.ErrDuplicateUsername
		}
		if u.Nickname == user.Nickname {
			return nil, common.ErrDuplicateNickname
		}
	}

	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.nextID++
	r.byID[stored.ID] = stored

	*user = stored
	return user, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.UserName == userName {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *MemoryRepository) ExistsByUsername(ctx context.Context, userName string) (bool, error) {
	_, err := r.FindByUsername(ctx, userName)
	return err == nil, nil
}

func (r *MemoryRepository) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a user. Only used to simulate account removal.
func (r *MemoryRepository) Delete(_ context.Context, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}
