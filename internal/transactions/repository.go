package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/fintrack/fintrack/internal/identity"
	"github.com/fintrack/fintrack/internal/infra"
)

const (
	bigintMin = "-9223372036854775808"
	bigintMax = "9223372036854775807"
)

// Repository persists transactions. Every method is scoped to one user.
type Repository interface {
	Insert(ctx context.Context, userID identity.UserID, input Input) (Transaction, error)
	List(ctx context.Context, userID identity.UserID, filter Filter) ([]Transaction, error)
	Get(ctx context.Context, userID identity.UserID, id int64) (Transaction, error)
	Delete(ctx context.Context, userID identity.UserID, id int64) error
	Summarize(ctx context.Context, userID identity.UserID, filter Filter) (Summary, error)
}

// PostgresRepository stores transactions in the userdata table.
type PostgresRepository struct {
	db infra.Querier
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert adds a row for the user and returns it with its generated id.
func (r *PostgresRepository) Insert(ctx context.Context, userID identity.UserID, input Input) (Transaction, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO userdata (user_id, date, sum, note) VALUES ($1, $2, $3, $4) RETURNING id`,
		int64(userID), input.Date, input.Sum, input.Note).Scan(&id)
	if err != nil {
		return Transaction{}, oops.Code("TRANSACTION_INSERT_FAILED").
			With("operation", "insert transaction").
			With("user_id", int64(userID)).
			Wrap(err)
	}
	return Transaction{ID: id, UserID: userID, Date: input.Date, Sum: input.Sum, Note: input.Note}, nil
}

// List returns the user's transactions ordered by date, then id.
func (r *PostgresRepository) List(ctx context.Context, userID identity.UserID, filter Filter) ([]Transaction, error) {
	where, args := filterClause(userID, filter)
	rows, err := r.db.Query(ctx, `SELECT id, user_id, date, sum, note FROM userdata WHERE `+where+` ORDER BY date, id`, args...)
	if err != nil {
		return nil, oops.Code("TRANSACTION_LIST_FAILED").
			With("operation", "list transactions").
			With("user_id", int64(userID)).
			Wrap(err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, oops.Code("TRANSACTION_SCAN_FAILED").
				With("operation", "list transactions").
				Wrap(err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TRANSACTION_LIST_FAILED").
			With("operation", "list transactions").
			With("user_id", int64(userID)).
			Wrap(err)
	}
	return out, nil
}

// Get fetches one transaction belonging to the user.
func (r *PostgresRepository) Get(ctx context.Context, userID identity.UserID, id int64) (Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, date, sum, note FROM userdata WHERE id = $1 AND user_id = $2`,
		id, int64(userID))
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, oops.Code("TRANSACTION_GET_FAILED").
			With("operation", "get transaction").
			With("transaction_id", id).
			Wrap(err)
	}
	return tx, nil
}

// Delete removes one transaction belonging to the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID identity.UserID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM userdata WHERE id = $1 AND user_id = $2`, id, int64(userID))
	if err != nil {
		return oops.Code("TRANSACTION_DELETE_FAILED").
			With("operation", "delete transaction").
			With("transaction_id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summarize counts and totals the user's transactions within the filter. The
// total is summed as NUMERIC and only cast when it fits in a BIGINT.
func (r *PostgresRepository) Summarize(ctx context.Context, userID identity.UserID, filter Filter) (Summary, error) {
	where, args := filterClause(userID, filter)
	var (
		summary Summary
		fits    bool
	)
	err := r.db.QueryRow(ctx, `WITH t AS (SELECT COUNT(*) AS n, COALESCE(SUM(sum), 0) AS total FROM userdata WHERE `+where+`)
		SELECT n, total BETWEEN `+bigintMin+` AND `+bigintMax+`,
			CASE WHEN total BETWEEN `+bigintMin+` AND `+bigintMax+` THEN total::BIGINT ELSE 0 END
		FROM t`, args...).
		Scan(&summary.Count, &fits, &summary.Total)
	if err != nil {
		return Summary{}, oops.Code("TRANSACTION_SUMMARY_FAILED").
			With("operation", "summarize transactions").
			With("user_id", int64(userID)).
			Wrap(err)
	}
	if !fits {
		return Summary{}, ErrTotalOutOfRange
	}
	return summary, nil
}

func filterClause(userID identity.UserID, filter Filter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{int64(userID)}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		tx     Transaction
		userID int64
		date   time.Time
	)
	if err := row.Scan(&tx.ID, &userID, &date, &tx.Sum, &tx.Note); err != nil {
		return Transaction{}, err
	}
	tx.UserID = identity.UserID(userID)
	tx.Date = date.UTC()
	return tx, nil
}
