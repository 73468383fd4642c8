package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/camp"
)

// CampRepository implements camp.Repository. Invitations live in a JSONB
// column; the camp version guard covers them.
type CampRepository struct {
	db DBTX
}

func NewCampRepository(db DBTX) *CampRepository {
	return &CampRepository{db: db}
}

func (r *CampRepository) Create(ctx context.Context, c *camp.Camp) error {
	invitations, err := json.Marshal(c.Invitations)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO camps (camp_id, name, location, date, status, admin_earnings, invitations, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, c.CampID, c.Name, c.Location, c.Date, c.Status, c.AdminEarnings, invitations, c.Version, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CampRepository) GetByID(ctx context.Context, campID uuid.UUID) (*camp.Camp, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, camp_id, name, location, date, status, admin_earnings, invitations, version, created_at, updated_at
		FROM camps WHERE camp_id=$1
	`, campID)
	c, err := scanCamp(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CampRepository) List(ctx context.Context, filter camp.Filter, limit, offset int) ([]*camp.Camp, error) {
	query := `
		SELECT id, camp_id, name, location, date, status, admin_earnings, invitations, version, created_at, updated_at
		FROM camps`
	where := ""
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = " WHERE status=$" + itoa(len(args))
	}
	if filter.VLEID != nil {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, filter.VLEID.String())
		where += `invitations @> jsonb_build_array(jsonb_build_object('vleId', $` + itoa(len(args)) + `::text))`
	}
	query += where + " ORDER BY date, id"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var camps []*camp.Camp
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		camps = append(camps, c)
	}
	return camps, rows.Err()
}

// Update writes the camp guarded by a version compare-and-set.
func (r *CampRepository) Update(ctx context.Context, c *camp.Camp) error {
	invitations, err := json.Marshal(c.Invitations)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE camps SET name=$1, location=$2, date=$3, status=$4, admin_earnings=$5,
		 invitations=$6, version=version+1, updated_at=$7
		WHERE camp_id=$8 AND version=$9
	`, c.Name, c.Location, c.Date, c.Status, c.AdminEarnings, invitations, c.UpdatedAt, c.CampID, c.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return camp.ErrConcurrentUpdate
	}
	c.Version++
	return nil
}

func scanCamp(row pgx.Row) (*camp.Camp, error) {
	var c camp.Camp
	var invitations []byte
	if err := row.Scan(&c.ID, &c.CampID, &c.Name, &c.Location, &c.Date, &c.Status,
		&c.AdminEarnings, &invitations, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(invitations) > 0 {
		if err := json.Unmarshal(invitations, &c.Invitations); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
