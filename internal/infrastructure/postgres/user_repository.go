package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, user_id, username, password_hash, name, contact, role, status,
	location, approved, available, services, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	services, err := json.Marshal(u.Services)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO users (user_id, username, password_hash, name, contact, role, status,
		 location, approved, available, services, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, u.UserID, u.Username, u.PasswordHash, u.Name, u.Contact, u.Role, u.Status,
		u.Location, u.Approved, u.Available, services, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	services, err := json.Marshal(u.Services)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE users SET username=$1, password_hash=$2, name=$3, contact=$4, role=$5, status=$6,
		 location=$7, approved=$8, available=$9, services=$10, updated_at=$11
		WHERE user_id=$12
	`, u.Username, u.PasswordHash, u.Name, u.Contact, u.Role, u.Status,
		u.Location, u.Approved, u.Available, services, u.UpdatedAt, u.UserID)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id=$1`, userID)
	u, err := scanUser(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`,
		user.NormalizeUsername(username))
	u, err := scanUser(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter, limit, offset int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	where := ""
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += clause + "$" + itoa(len(args))
	}
	if filter.Role != nil {
		add("role=", *filter.Role)
	}
	if filter.Status != nil {
		add("status=", *filter.Status)
	}
	if filter.Approved != nil {
		add("approved=", *filter.Approved)
	}
	if filter.Available != nil {
		add("available=", *filter.Available)
	}
	if filter.Username != nil {
		add("username=", user.NormalizeUsername(*filter.Username))
	}
	query += where + " ORDER BY id"
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
	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var services []byte
	if err := row.Scan(&u.ID, &u.UserID, &u.Username, &u.PasswordHash, &u.Name, &u.Contact,
		&u.Role, &u.Status, &u.Location, &u.Approved, &u.Available, &services,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &u.Services); err != nil {
			return nil, err
		}
	}
	return &u, nil
}
