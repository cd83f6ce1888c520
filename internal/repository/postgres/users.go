package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

const usersTable = "users"

var userColumns = []string{
	"id",
	"username",
	"email",
	"password",
	"verified",
	"avatar",
	"refresh_token",
	"role",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

var _ port.UserRepository = (*UserRepository)(nil)

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{exec: tx, builder: r.builder}
}

// Create inserts a new user row and returns it with generated fields.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}

	stmt, args, err := r.builder.Insert(usersTable).
		Columns("username", "email", "password", "verified", "avatar", "role").
		Values(user.Username, user.Email, user.PasswordHash, user.Verified, user.AvatarURL, string(role)).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user sql: %w", err)
	}

	created, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("insert user", err)
	}
	return created, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).From(usersTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	user, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("select user", err)
	}
	return user, nil
}

// UpdateRefreshToken stores token, or clears it when token is nil.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("refresh_token", token).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update refresh token sql: %w", err)
	}

	return r.execOne(ctx, "update refresh token", stmt, args)
}

// MarkVerified flips the verified flag for email.
func (r *UserRepository) MarkVerified(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("verified", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verified sql: %w", err)
	}

	return r.execOne(ctx, "mark verified", stmt, args)
}

// UpdateAvatar sets the avatar url and returns the updated user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email string, url *string) (*domain.User, error) {
	stmt, args, err := r.builder.Update(usersTable).
		Set("avatar", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"email": email}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update avatar sql: %w", err)
	}

	user, err := scanUser(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, mapError("update avatar", err)
	}
	return user, nil
}

func (r *UserRepository) execOne(ctx context.Context, op, stmt string, args []any) error {
	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Verified,
		&user.AvatarURL,
		&user.RefreshToken,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
