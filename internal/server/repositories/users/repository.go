package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the user store. Lookups of a missing user return
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, userName string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUsername(ctx context.Context, userName string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
}
