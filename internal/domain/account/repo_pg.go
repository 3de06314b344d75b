package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
	"github.com/healthreach/healthreach/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accountCols = `id, email, password_hash, name, is_active, is_staff, health_center_id, created_at, updated_at`

func (r *repoPG) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.IsActive, &a.IsStaff,
		&a.HealthCenterID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("account not found")
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO account (id, email, password_hash, name, is_active, is_staff, health_center_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, strings.ToLower(a.Email), a.PasswordHash, a.Name, a.IsActive, a.IsStaff, a.HealthCenterID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict("email already registered")
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE email = $1`, strings.ToLower(email)))
}

func (r *repoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE email = $1)`, strings.ToLower(email)).Scan(&exists)
	return exists, err
}

func (r *repoPG) SetHealthCenter(ctx context.Context, accountID, healthCenterID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE account SET health_center_id = $2, updated_at = NOW() WHERE id = $1`,
		accountID, healthCenterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("account not found")
	}
	return nil
}

func (r *repoPG) ListStaff(ctx context.Context, activeOnly bool) ([]*Account, error) {
	query := `SELECT ` + accountCols + ` FROM account WHERE is_staff = TRUE`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY email ASC`

	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.IsActive, &a.IsStaff,
			&a.HealthCenterID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
