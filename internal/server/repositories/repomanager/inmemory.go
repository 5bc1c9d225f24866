package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out a single shared in-memory users
// repository regardless of the DBTX passed in. It doubles as a Transactor
// whose transactions are not isolated; the repository itself enforces
// uniqueness.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

// MemoryUsers exposes the concrete repository, e.g. for health checks or tests.
func (m *InMemoryRepositoryManager) MemoryUsers() *users.MemoryRepository {
	return m.users
}

func (m *InMemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}
