package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/core"
)

var userColumns = []string{"id", "email", "role", "status", "created_at", "updated_at"}

var apiKeyColumns = []string{"id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used"}

const uniqueViolation = "23505"

// Repository implements the auth repository interface using PostgreSQL
type Repository struct {
	db DBInterface
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRepository creates a new auth repository
func NewRepository(db DBInterface) uc.Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uc.ErrEmailExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// CreateInitialAdminIfNone atomically creates the initial admin user. The
// INSERT ... WHERE NOT EXISTS guard makes concurrent bootstrap attempts
// race-free: exactly one wins, the rest see ErrAlreadyBootstrapped.
func (r *Repository) CreateInitialAdminIfNone(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, role, status, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = $7)
	`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
		model.RoleAdmin,
	)
	if err != nil {
		return fmt.Errorf("creating initial admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrAlreadyBootstrapped
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id core.ID) (*model.User, error) {
	query, args, err := squirrel.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var user model.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query, args, err := squirrel.Select(userColumns...).
		From("users").
		Where("lower(email) = lower(?)", email).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var user model.User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

// ListUsers retrieves all users, newest first
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query, args, err := squirrel.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var users []*model.User
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, fmt.Errorf("scanning users: %w", err)
	}
	return users, nil
}

// UpdateUser updates user fields
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.Update("users").
		Set("email", user.Email).
		Set("role", user.Role).
		Set("status", user.Status).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uc.ErrEmailExists
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user by ID; api_keys cascade via FK
func (r *Repository) DeleteUser(ctx context.Context, id core.ID) error {
	query, args, err := squirrel.Delete("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrUserNotFound
	}
	return nil
}

// CreateAPIKey creates a new API key
func (r *Repository) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	query, args, err := squirrel.Insert("api_keys").
		Columns(apiKeyColumns...).
		Values(key.ID, key.UserID, key.Hash, key.Fingerprint, key.Prefix, key.CreatedAt, key.LastUsed).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting API key: %w", err)
	}
	return nil
}

// GetAPIKeyByID retrieves an API key by ID
func (r *Repository) GetAPIKeyByID(ctx context.Context, id core.ID) (*model.APIKey, error) {
	query, args, err := squirrel.Select(apiKeyColumns...).
		From("api_keys").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var key model.APIKey
	if err := pgxscan.Get(ctx, r.db, &key, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("scanning API key: %w", err)
	}
	return &key, nil
}

// GetAPIKeyByFingerprint retrieves an API key by its SHA-256 fingerprint.
// The fingerprint index makes validation O(1) regardless of table size; the
// bcrypt verification of the plaintext happens in the use case layer.
func (r *Repository) GetAPIKeyByFingerprint(ctx context.Context, fingerprint []byte) (*model.APIKey, error) {
	query, args, err := squirrel.Select(apiKeyColumns...).
		From("api_keys").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var key model.APIKey
	if err := pgxscan.Get(ctx, r.db, &key, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("scanning API key: %w", err)
	}
	return &key, nil
}

// ListAPIKeysByUserID retrieves all API keys for a user
func (r *Repository) ListAPIKeysByUserID(ctx context.Context, userID core.ID) ([]*model.APIKey, error) {
	query, args, err := squirrel.Select(apiKeyColumns...).
		From("api_keys").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var keys []*model.APIKey
	if err := pgxscan.Select(ctx, r.db, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("scanning API keys: %w", err)
	}
	return keys, nil
}

// UpdateAPIKeyLastUsed updates the last_used timestamp for an API key
func (r *Repository) UpdateAPIKeyLastUsed(ctx context.Context, id core.ID) error {
	// GREATEST prevents concurrent updates from moving the timestamp backwards
	query := `UPDATE api_keys SET last_used = GREATEST(last_used, NOW()) WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("updating API key last_used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrAPIKeyNotFound
	}
	return nil
}

// DeleteAPIKey removes an API key by ID
func (r *Repository) DeleteAPIKey(ctx context.Context, id core.ID) error {
	query, args, err := squirrel.Delete("api_keys").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrAPIKeyNotFound
	}
	return nil
}
