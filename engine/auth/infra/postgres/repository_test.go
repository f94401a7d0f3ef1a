package postgres_test

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/substrate/engine/auth/infra/postgres"
	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/core"
)

// MockDBInterface is a mock implementation of postgres.DBInterface
type MockDBInterface struct {
	mockPool pgxmock.PgxPoolIface
}

func (m *MockDBInterface) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return m.mockPool.Exec(ctx, sql, arguments...)
}

func (m *MockDBInterface) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.mockPool.Query(ctx, sql, args...)
}

func (m *MockDBInterface) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.mockPool.QueryRow(ctx, sql, args...)
}

func (m *MockDBInterface) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.mockPool.Begin(ctx)
}

func setupRepo(t *testing.T) (uc.Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return postgres.NewRepository(&MockDBInterface{mockPool: mockPool}), mockPool
}

func userRow(user *model.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "role", "status", "created_at", "updated_at"}).
		AddRow(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt)
}

func TestRepository_CreateUser(t *testing.T) {
	t.Run("Should insert all user columns", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := &model.User{
			ID:        core.MustNewID(),
			Email:     "ada@example.com",
			Role:      model.RoleMember,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.CreateUser(context.Background(), user)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should translate unique violations to ErrEmailExists", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := &model.User{
			ID:        core.MustNewID(),
			Email:     "ada@example.com",
			Role:      model.RoleMember,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		err := repo.CreateUser(context.Background(), user)
		assert.ErrorIs(t, err, uc.ErrEmailExists)
	})
}

func TestRepository_CreateInitialAdminIfNone(t *testing.T) {
	admin := func(now time.Time) *model.User {
		return &model.User{
			ID:        core.MustNewID(),
			Email:     "root@example.com",
			Role:      model.RoleAdmin,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	t.Run("Should insert the admin when none exists", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := admin(now)
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt, model.RoleAdmin).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.CreateInitialAdminIfNone(context.Background(), user)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrAlreadyBootstrapped when an admin exists", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := admin(now)
		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt, model.RoleAdmin).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		err := repo.CreateInitialAdminIfNone(context.Background(), user)
		assert.ErrorIs(t, err, uc.ErrAlreadyBootstrapped)
	})
}

func TestRepository_GetUserByEmail(t *testing.T) {
	t.Run("Should match email case-insensitively", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := &model.User{
			ID:        core.MustNewID(),
			Email:     "ada@example.com",
			Role:      model.RoleAdmin,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE lower\\(email\\) = lower\\(\\$1\\)").
			WithArgs("Ada@Example.com").
			WillReturnRows(userRow(user))
		got, err := repo.GetUserByEmail(context.Background(), "Ada@Example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrUserNotFound when no row matches", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		mockPool.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, uc.ErrUserNotFound)
	})
}

func TestRepository_UpdateUser(t *testing.T) {
	t.Run("Should return ErrUserNotFound when no rows affected", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := &model.User{
			ID:        core.MustNewID(),
			Email:     "ada@example.com",
			Role:      model.RoleMember,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockPool.ExpectExec("UPDATE users").
			WithArgs(user.Email, user.Role, user.Status, user.UpdatedAt, user.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdateUser(context.Background(), user)
		assert.ErrorIs(t, err, uc.ErrUserNotFound)
	})
	t.Run("Should translate unique violations to ErrEmailExists", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		now := time.Now().UTC()
		user := &model.User{
			ID:        core.MustNewID(),
			Email:     "taken@example.com",
			Role:      model.RoleMember,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		mockPool.ExpectExec("UPDATE users").
			WithArgs(user.Email, user.Role, user.Status, user.UpdatedAt, user.ID).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		err := repo.UpdateUser(context.Background(), user)
		assert.ErrorIs(t, err, uc.ErrEmailExists)
	})
}

func TestRepository_GetAPIKeyByFingerprint(t *testing.T) {
	t.Run("Should look up key by fingerprint", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		fingerprint := sha256.Sum256([]byte("sbst_somekey"))
		key := &model.APIKey{
			ID:          core.MustNewID(),
			UserID:      core.MustNewID(),
			Hash:        []byte("$2a$10$hash"),
			Fingerprint: fingerprint[:],
			Prefix:      model.KeyPrefix,
			CreatedAt:   time.Now().UTC(),
			LastUsed:    sql.NullTime{},
		}
		mockPool.ExpectQuery("SELECT (.+) FROM api_keys WHERE fingerprint = \\$1").
			WithArgs(fingerprint[:]).
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used"},
			).AddRow(key.ID, key.UserID, key.Hash, key.Fingerprint, key.Prefix, key.CreatedAt, key.LastUsed))
		got, err := repo.GetAPIKeyByFingerprint(context.Background(), fingerprint[:])
		require.NoError(t, err)
		assert.Equal(t, key.ID, got.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrAPIKeyNotFound for unknown fingerprint", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		mockPool.ExpectQuery("SELECT (.+) FROM api_keys").
			WithArgs([]byte{0x01}).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetAPIKeyByFingerprint(context.Background(), []byte{0x01})
		assert.ErrorIs(t, err, uc.ErrAPIKeyNotFound)
	})
}

func TestRepository_UpdateAPIKeyLastUsed(t *testing.T) {
	t.Run("Should use GREATEST to avoid moving last_used backwards", func(t *testing.T) {
		repo, mockPool := setupRepo(t)
		keyID := core.MustNewID()
		mockPool.ExpectExec("UPDATE api_keys SET last_used = GREATEST\\(last_used, NOW\\(\\)\\)").
			WithArgs(keyID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.UpdateAPIKeyLastUsed(context.Background(), keyID)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
