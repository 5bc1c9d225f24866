package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertQuery     = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*nickname,\s*password_hash,\s*authority\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	byUsernameQuery = `(?s)^SELECT\s+id,\s*username,\s*nickname,\s*password_hash,\s*authority,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`
	byIDQuery       = `(?s)^SELECT\s+id,\s*username,\s*nickname,\s*password_hash,\s*authority,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "username", "nickname", "password_hash", "authority", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func newAlice() *models.User {
	return &models.User{UserName: "alice", Nickname: "ally", PasswordHash: "$2a$hash", Authority: "ROLE_USER"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created)
	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "ally", "$2a$hash", "ROLE_USER").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), newAlice())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.UserName != "alice" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "ally", "$2a$hash", "ROLE_USER").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), newAlice())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"username", "users_username_key", common.ErrDuplicateUsername},
		{"nickname", "users_nickname_key", common.ErrDuplicateNickname},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertQuery).
				WithArgs("alice", "ally", "$2a$hash", "ROLE_USER").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), newAlice())
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreate_OtherConstraintIsDBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "ally", "$2a$hash", "ROLE_USER").
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "users_authority_check"})

	_, err := repo.Create(context.Background(), newAlice())
	if err == nil || errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrDuplicateNickname) {
		t.Fatalf("expected plain db error, got %v", err)
	}
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow(int64(1), "alice", "ally", "$2a$hash", "ROLE_USER", time.Now())
	mock.ExpectQuery(byUsernameQuery).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if got.ID != 1 || got.Nickname != "ally" || got.Authority != "ROLE_USER" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byUsernameQuery).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows(userColumns).
			AddRow(int64(7), "bob", "bobby", "h", "ROLE_ADMIN", time.Now())
		mock.ExpectQuery(byIDQuery).WithArgs(int64(7)).WillReturnRows(rows)

		got, err := repo.FindByID(context.Background(), 7)
		if err != nil {
			t.Fatalf("FindByID error: %v", err)
		}
		if got.UserName != "bob" || got.Authority != "ROLE_ADMIN" {
			t.Fatalf("unexpected user: %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(byIDQuery).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 8)
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(byIDQuery).WithArgs(int64(9)).WillReturnError(errors.New("db err"))

		_, err := repo.FindByID(context.Background(), 9)
		if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
			t.Fatalf("expected wrapped db error, got %v", err)
		}
	})
}

func TestExists(t *testing.T) {
	tests := []struct {
		name  string
		query string
		arg   any
		call  func(r *PostgresRepository) (bool, error)
		found bool
	}{
		{
			name:  "by id",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\)$`,
			arg:   int64(3),
			call:  func(r *PostgresRepository) (bool, error) { return r.ExistsByID(context.Background(), 3) },
			found: true,
		},
		{
			name:  "by username",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\)$`,
			arg:   "alice",
			call:  func(r *PostgresRepository) (bool, error) { return r.ExistsByUsername(context.Background(), "alice") },
			found: false,
		},
		{
			name:  "by nickname",
			query: `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+nickname\s*=\s*\$1\)$`,
			arg:   "ally",
			call:  func(r *PostgresRepository) (bool, error) { return r.ExistsByNickname(context.Background(), "ally") },
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tt.query).
				WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.found))

			got, err := tt.call(repo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.found {
				t.Fatalf("got %v want %v", got, tt.found)
			}
		})
	}
}

func TestExistsByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(int64(1)).WillReturnError(errors.New("conn reset"))

	_, err := repo.ExistsByID(context.Background(), 1)
	if err == nil || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
