package appointment

import (
	"context"
	"errors"

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

const apptCols = `id, account_id, health_center_id, phone, scheduled_for, message, status, created_at, updated_at`

const apptDetailQuery = `
	SELECT a.id, a.account_id, a.health_center_id, a.phone, a.scheduled_for, a.message, a.status,
		a.created_at, a.updated_at,
		acc.name AS owner_name, acc.email AS owner_email, hc.name AS center_name
	FROM appointment a
	JOIN account acc ON acc.id = a.account_id
	JOIN health_center hc ON hc.id = a.health_center_id`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.AccountID, &a.HealthCenterID, &a.Phone, &a.ScheduledFor,
		&a.Message, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment not found")
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, account_id, health_center_id, phone, scheduled_for, message, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.AccountID, a.HealthCenterID, a.Phone, a.ScheduledFor, a.Message, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	var d Detail
	err := r.conn(ctx).QueryRow(ctx, apptDetailQuery+` WHERE a.id = $1`, id).Scan(
		&d.ID, &d.AccountID, &d.HealthCenterID, &d.Phone, &d.ScheduledFor,
		&d.Message, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.OwnerName, &d.OwnerEmail, &d.CenterName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment not found")
	}
	return &d, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) listDetails(ctx context.Context, where string, countWhere string, arg interface{}, limit, offset int) ([]*Detail, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE `+countWhere, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		apptDetailQuery+` WHERE `+where+` ORDER BY a.created_at DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.AccountID, &d.HealthCenterID, &d.Phone, &d.ScheduledFor,
			&d.Message, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.OwnerName, &d.OwnerEmail, &d.CenterName); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Detail, int, error) {
	return r.listDetails(ctx, `a.account_id = $1`, `account_id = $1`, accountID, limit, offset)
}

func (r *repoPG) ListByCenter(ctx context.Context, healthCenterID uuid.UUID, limit, offset int) ([]*Detail, int, error) {
	return r.listDetails(ctx, `a.health_center_id = $1`, `health_center_id = $1`, healthCenterID, limit, offset)
}

func (r *repoPG) DeleteByCenter(ctx context.Context, healthCenterID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE health_center_id = $1`, healthCenterID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) CountByStatus(ctx context.Context, healthCenterID uuid.UUID) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, COUNT(*) FROM appointment WHERE health_center_id = $1 GROUP BY status`,
		healthCenterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{
		StatusPending:   0,
		StatusConfirmed: 0,
		StatusCancelled: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
