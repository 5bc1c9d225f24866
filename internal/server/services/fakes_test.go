package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

var errDBDown = errors.New("db down")

// fakeUsersRepo is an in-memory users.Repository.
type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	creates int
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.err != nil {
		return nil, f.err
	}
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.nextID++
	f.byID[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByUsername(_ context.Context, name string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.UserName == name })
}

func (f *fakeUsersRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsersRepo) exists(match func(*models.User) bool) (bool, error) {
	_, err := f.find(match)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUsersRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	return f.exists(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsersRepo) ExistsByUsername(_ context.Context, name string) (bool, error) {
	return f.exists(func(u *models.User) bool { return u.UserName == name })
}

func (f *fakeUsersRepo) ExistsByNickname(_ context.Context, nick string) (bool, error) {
	return f.exists(func(u *models.User) bool { return u.Nickname == nick })
}

type fakeRepoManager struct {
	users *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }

// fakeTransactor runs fn directly and records whether it committed.
type fakeTransactor struct {
	calls     int
	committed int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	f.calls++
	if err := fn(ctx, nil); err != nil {
		return err
	}
	f.committed++
	return nil
}

// plainHasher marks passwords instead of hashing them.
type plainHasher struct {
	hashes int
}

func (h *plainHasher) Hash(p string) (string, error) {
	h.hashes++
	return "hashed:" + p, nil
}

func (h *plainHasher) Matches(p, hash string) bool {
	return strings.TrimPrefix(hash, "hashed:") == p && strings.HasPrefix(hash, "hashed:")
}

// memStore is an in-memory refreshtokens.Store.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (s *memStore) Put(_ context.Context, k, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[k] = v
	return nil
}

func (s *memStore) Get(_ context.Context, k string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[k]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (s *memStore) SetExpire(_ context.Context, k string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.values[k]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (s *memStore) TimeToLive(context.Context, string) (time.Duration, error) { return -1, nil }

func (s *memStore) Delete(_ context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, k)
	return nil
}
