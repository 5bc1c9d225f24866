package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type fakeStore struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string

	putErr    error
	expireErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (s *fakeStore) SetExpire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expireErr != nil {
		return s.expireErr
	}
	if _, ok := s.values[key]; !ok {
		return common.ErrorNotFound
	}
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) TimeToLive(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return 0, common.ErrorNotFound
	}
	ttl, ok := s.ttls[key]
	if !ok {
		return -1, nil
	}
	return ttl, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.ttls, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeUsers struct {
	ids   map[int64]bool
	err   error
	calls int
	// deadlineSet records whether the lookup ran under a deadline
	deadlineSet bool
}

func (u *fakeUsers) ExistsByID(ctx context.Context, id int64) (bool, error) {
	u.calls++
	_, u.deadlineSet = ctx.Deadline()
	if u.err != nil {
		return false, u.err
	}
	return u.ids[id], nil
}

var errBackendDown = errors.New("connection refused")
