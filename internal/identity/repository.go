package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/fintrack/fintrack/internal/infra"
)

// Repository is the credential store. Logins are unique across all users.
type Repository interface {
	// Insert stores a new user and returns its identifier, or ErrDuplicateLogin.
	Insert(ctx context.Context, login, passwordHash string) (UserID, error)
	// FindByLogin returns ErrNotFound when no user has the login.
	FindByLogin(ctx context.Context, login string) (User, error)
	// FindByID returns ErrNotFound when the identifier is unknown.
	FindByID(ctx context.Context, id UserID) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db infra.Querier
}

// NewPostgresRepository builds a Postgres-backed credential store.
func NewPostgresRepository(db infra.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a user row. The unique index on login decides races.
func (r *PostgresRepository) Insert(ctx context.Context, login, passwordHash string) (UserID, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO users (login, password) VALUES ($1, $2) RETURNING id`,
		login, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, ErrDuplicateLogin
		}
		return 0, oops.Code("USER_INSERT_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return UserID(id), nil
}

// FindByLogin fetches a user by exact, case-sensitive login.
func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, login, password, created_at FROM users WHERE login = $1`, login)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, oops.Code("USER_GET_BY_LOGIN_FAILED").
			With("operation", "get user by login").
			Wrap(err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id UserID) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, login, password, created_at FROM users WHERE id = $1`, int64(id))
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("user_id", int64(id)).
			Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        int64
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Login, &user.PasswordHash, &createdAt); err != nil {
		return User{}, err
	}
	user.ID = UserID(id)
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
