package unit

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Repository provides database operations for units and staff accounts
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new unit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Unit Operations ---

// CreateUnit creates a new unit
func (r *Repository) CreateUnit(ctx context.Context, u *Unit) error {
	query := `
		INSERT INTO units (id, code, name, notification_email, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Code, u.Name, u.NotificationEmail, u.CategoryID, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Validation("unit code already in use", map[string]string{"code": u.Code})
		}
		return errors.Wrap(err, "failed to create unit")
	}

	return nil
}

// GetUnit retrieves a unit by ID
func (r *Repository) GetUnit(ctx context.Context, id types.ID) (*Unit, error) {
	query := `
		SELECT id, code, name, notification_email, category_id, created_at, updated_at
		FROM units
		WHERE id = $1`

	u := &Unit{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Code, &u.Name, &u.NotificationEmail, &u.CategoryID, &u.CreatedAt, &u.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("unit", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unit")
	}

	return u, nil
}

// GetUnitByCode retrieves a unit by code
func (r *Repository) GetUnitByCode(ctx context.Context, code string) (*Unit, error) {
	query := `
		SELECT id, code, name, notification_email, category_id, created_at, updated_at
		FROM units
		WHERE code = $1`

	u := &Unit{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&u.ID, &u.Code, &u.Name, &u.NotificationEmail, &u.CategoryID, &u.CreatedAt, &u.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("unit", code)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unit")
	}

	return u, nil
}

// ListUnits lists all units ordered by code
func (r *Repository) ListUnits(ctx context.Context) ([]Unit, error) {
	query := `
		SELECT id, code, name, notification_email, category_id, created_at, updated_at
		FROM units
		ORDER BY code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list units")
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Code, &u.Name, &u.NotificationEmail, &u.CategoryID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan unit")
		}
		units = append(units, u)
	}

	return units, rows.Err()
}

// UpdateUnit updates a unit's mutable fields
func (r *Repository) UpdateUnit(ctx context.Context, u *Unit) error {
	u.UpdatedAt = time.Now()

	query := `
		UPDATE units
		SET name = $2, notification_email = $3, category_id = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.NotificationEmail, u.CategoryID, u.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to update unit")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("unit", u.ID.String())
	}

	return nil
}

// DeleteUnit deletes a unit. Fails while complaints or staff still
// reference it.
func (r *Repository) DeleteUnit(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return errors.Validation("unit still has complaints or staff assigned", nil)
		}
		return errors.Wrap(err, "failed to delete unit")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("unit", id.String())
	}

	return nil
}

// --- Staff Operations ---

// CreateStaff creates a staff or admin account
func (r *Repository) CreateStaff(ctx context.Context, s *Staff) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, unit_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Name, s.Email, s.PasswordHash, s.Role, s.UnitID, s.CreatedAt, s.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Validation("email already registered", map[string]string{"email": s.Email})
		}
		return errors.Wrap(err, "failed to create staff")
	}

	return nil
}

// GetStaff retrieves a staff account by ID
func (r *Repository) GetStaff(ctx context.Context, id types.ID) (*Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, unit_id, created_at, updated_at
		FROM users
		WHERE id = $1`

	s := &Staff{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.UnitID, &s.CreatedAt, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("staff", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staff")
	}

	return s, nil
}

// GetStaffByEmail retrieves a staff account by email, for login.
func (r *Repository) GetStaffByEmail(ctx context.Context, email string) (*Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, unit_id, created_at, updated_at
		FROM users
		WHERE email = $1`

	s := &Staff{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.UnitID, &s.CreatedAt, &s.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("staff", email)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staff")
	}

	return s, nil
}

// ListStaff lists staff accounts, optionally restricted to one unit
func (r *Repository) ListStaff(ctx context.Context, unitID *types.ID) ([]Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, unit_id, created_at, updated_at
		FROM users`
	args := []any{}

	if unitID != nil {
		query += ` WHERE unit_id = $1`
		args = append(args, *unitID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list staff")
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.UnitID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan staff")
		}
		staff = append(staff, s)
	}

	return staff, rows.Err()
}

// DeleteStaff deletes a staff account
func (r *Repository) DeleteStaff(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete staff")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("staff", id.String())
	}

	return nil
}
