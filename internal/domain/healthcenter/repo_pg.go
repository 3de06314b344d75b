package healthcenter

import (
	"context"
	"errors"
	"fmt"

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

const centerCols = `id, name, description, address, city, country, email, phone,
	is_emergency, has_ambulance, has_pharmacy, has_lab,
	specialties, conditions_treated, owner_account_id, created_at, updated_at`

func (r *repoPG) scanCenter(row pgx.Row) (*HealthCenter, error) {
	var hc HealthCenter
	err := row.Scan(&hc.ID, &hc.Name, &hc.Description, &hc.Address, &hc.City, &hc.Country,
		&hc.Email, &hc.Phone,
		&hc.IsEmergency, &hc.HasAmbulance, &hc.HasPharmacy, &hc.HasLab,
		&hc.Specialties, &hc.ConditionsTreated, &hc.OwnerAccountID, &hc.CreatedAt, &hc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("health center not found")
	}
	return &hc, err
}

func (r *repoPG) Create(ctx context.Context, hc *HealthCenter) error {
	if hc.ID == uuid.Nil {
		hc.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_center (id, name, description, address, city, country, email, phone,
			is_emergency, has_ambulance, has_pharmacy, has_lab,
			specialties, conditions_treated, owner_account_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		hc.ID, hc.Name, hc.Description, hc.Address, hc.City, hc.Country, hc.Email, hc.Phone,
		hc.IsEmergency, hc.HasAmbulance, hc.HasPharmacy, hc.HasLab,
		hc.Specialties, hc.ConditionsTreated, hc.OwnerAccountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict("a health center with this name and address already exists")
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthCenter, error) {
	return r.scanCenter(r.conn(ctx).QueryRow(ctx, `SELECT `+centerCols+` FROM health_center WHERE id = $1`, id))
}

func (r *repoPG) GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*HealthCenter, error) {
	return r.scanCenter(r.conn(ctx).QueryRow(ctx, `SELECT `+centerCols+` FROM health_center WHERE owner_account_id = $1`, ownerAccountID))
}

func (r *repoPG) ExistsByNameAddress(ctx context.Context, name, address string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM health_center WHERE name = $1 AND address = $2)`,
		name, address).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, hc *HealthCenter) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_center SET name=$2, description=$3, address=$4, city=$5, country=$6,
			email=$7, phone=$8, is_emergency=$9, has_ambulance=$10, has_pharmacy=$11, has_lab=$12,
			specialties=$13, conditions_treated=$14, updated_at=NOW()
		WHERE id = $1`,
		hc.ID, hc.Name, hc.Description, hc.Address, hc.City, hc.Country,
		hc.Email, hc.Phone, hc.IsEmergency, hc.HasAmbulance, hc.HasPharmacy, hc.HasLab,
		hc.Specialties, hc.ConditionsTreated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.Conflict("a health center with this name and address already exists")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("health center not found")
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*HealthCenter, int, error) {
	query := `SELECT ` + centerCols + ` FROM health_center WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM health_center WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.Query != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR specialties ILIKE $%d OR conditions_treated ILIKE $%d)`, idx, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+filter.Query+"%")
		idx++
	}
	if filter.City != "" {
		query += fmt.Sprintf(` AND city ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND city ILIKE $%d`, idx)
		args = append(args, filter.City)
		idx++
	}
	boolFilters := []struct {
		col string
		val *bool
	}{
		{"is_emergency", filter.Emergency},
		{"has_ambulance", filter.Ambulance},
		{"has_pharmacy", filter.Pharmacy},
		{"has_lab", filter.Lab},
	}
	for _, f := range boolFilters {
		if f.val != nil {
			query += fmt.Sprintf(` AND %s = $%d`, f.col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, f.col, idx)
			args = append(args, *f.val)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthCenter
	for rows.Next() {
		hc, err := r.scanCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, hc)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Districts(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT city FROM health_center WHERE city <> '' ORDER BY city ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var districts []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		districts = append(districts, city)
	}
	return districts, rows.Err()
}
