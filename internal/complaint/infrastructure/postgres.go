// Package infrastructure provides the PostgreSQL persistence for
// complaints, their status history and disposition logs.
package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// PostgresRepository implements domain.Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL complaint repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ domain.Repository = (*PostgresRepository)(nil)

const complaintColumns = `
	id, code, category_id, title, body,
	reporter_name, reporter_email, reporter_phone, anonymous,
	location, incident_date, evidence_ref,
	status, unit_id, created_at, updated_at`

// Save persists a new complaint and its initial history entry atomically
func (r *PostgresRepository) Save(ctx context.Context, c *domain.Complaint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO complaints (` + complaintColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)`

	_, err = tx.Exec(ctx, query,
		c.ID, c.Code, c.CategoryID, c.Title, c.Body,
		c.Reporter.Name, c.Reporter.Email, c.Reporter.Phone, c.Anonymous,
		c.Location, c.IncidentDate, c.EvidenceRef,
		c.Status, c.UnitID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "code") {
			return errors.DuplicateCode(c.Code)
		}
		return errors.Wrap(err, "failed to save complaint")
	}

	for i := range c.History {
		if err := insertHistory(ctx, tx, &c.History[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit complaint")
	}

	return nil
}

// FindByID retrieves a complaint by ID
func (r *PostgresRepository) FindByID(ctx context.Context, id types.ID) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return r.scanOne(ctx, query, id.String(), id)
}

// FindByCode retrieves a complaint by tracking code
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE code = $1`
	return r.scanOne(ctx, query, code, code)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query, label string, arg any) (*domain.Complaint, error) {
	c := &domain.Complaint{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Code, &c.CategoryID, &c.Title, &c.Body,
		&c.Reporter.Name, &c.Reporter.Email, &c.Reporter.Phone, &c.Anonymous,
		&c.Location, &c.IncidentDate, &c.EvidenceRef,
		&c.Status, &c.UnitID, &c.CreatedAt, &c.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("complaint", label)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get complaint")
	}

	return c, nil
}

// CodeExists reports whether a tracking code is already taken
func (r *PostgresRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM complaints WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check tracking code")
	}
	return exists, nil
}

// ApplyTransition applies one workflow step in a single transaction. The
// status update is conditional on the expected prior status; zero rows
// affected means a concurrent writer moved the complaint first, which is
// reported as InvalidTransition (or NotFound when the row is gone).
func (r *PostgresRepository) ApplyTransition(ctx context.Context, t *domain.Transition) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var tag pgconn.CommandTag
	if t.UnitID != nil {
		tag, err = tx.Exec(ctx, `
			UPDATE complaints
			SET status = $3, unit_id = $4, updated_at = $5
			WHERE id = $1 AND status = $2`,
			t.ComplaintID, t.From, t.To, t.UnitID, t.UpdatedAt,
		)
	} else {
		tag, err = tx.Exec(ctx, `
			UPDATE complaints
			SET status = $3, updated_at = $4
			WHERE id = $1 AND status = $2`,
			t.ComplaintID, t.From, t.To, t.UpdatedAt,
		)
	}
	if err != nil {
		return errors.Wrap(err, "failed to update complaint status")
	}

	if tag.RowsAffected() == 0 {
		var current domain.Status
		err := tx.QueryRow(ctx, `SELECT status FROM complaints WHERE id = $1`, t.ComplaintID).Scan(&current)
		if err == pgx.ErrNoRows {
			return errors.NotFound("complaint", t.ComplaintID.String())
		}
		if err != nil {
			return errors.Wrap(err, "failed to re-check complaint status")
		}
		return errors.InvalidTransition("complaint status changed concurrently", map[string]string{
			"expected": string(t.From),
			"actual":   string(current),
		})
	}

	entry := t.Entry
	if err := insertHistory(ctx, tx, &entry); err != nil {
		return err
	}

	if t.Disposition != nil {
		d := t.Disposition
		_, err = tx.Exec(ctx, `
			INSERT INTO dispositions (id, complaint_id, from_unit_id, to_unit_id, rationale, actor_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			d.ID, d.ComplaintID, d.FromUnitID, d.ToUnitID, d.Rationale, d.ActorID, d.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to record disposition")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transition")
	}

	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, e *domain.StatusEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO status_history (id, complaint_id, status, note, actor_id, actor_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ComplaintID, e.Status, e.Note, e.ActorID, e.ActorRole, e.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to record status history")
	}
	return nil
}

// GetTimeline returns the status history of a complaint, oldest first
func (r *PostgresRepository) GetTimeline(ctx context.Context, complaintID types.ID) ([]domain.StatusEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, status, note, actor_id, actor_role, created_at
		FROM status_history
		WHERE complaint_id = $1
		ORDER BY created_at`,
		complaintID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get timeline")
	}
	defer rows.Close()

	var entries []domain.StatusEntry
	for rows.Next() {
		var e domain.StatusEntry
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.Status, &e.Note, &e.ActorID, &e.ActorRole, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan status entry")
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetDispositions returns the disposition log of a complaint, oldest first
func (r *PostgresRepository) GetDispositions(ctx context.Context, complaintID types.ID) ([]domain.Disposition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, from_unit_id, to_unit_id, rationale, actor_id, created_at
		FROM dispositions
		WHERE complaint_id = $1
		ORDER BY created_at`,
		complaintID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dispositions")
	}
	defer rows.Close()

	var dispositions []domain.Disposition
	for rows.Next() {
		var d domain.Disposition
		if err := rows.Scan(&d.ID, &d.ComplaintID, &d.FromUnitID, &d.ToUnitID, &d.Rationale, &d.ActorID, &d.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan disposition")
		}
		dispositions = append(dispositions, d)
	}

	return dispositions, rows.Err()
}

// List retrieves complaints with filtering and pagination
func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Complaint, int, error) {
	conditions := []string{}
	args := []any{}
	argNum := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argNum))
		args = append(args, *filter.CategoryID)
		argNum++
	}
	if filter.UnitID != nil {
		conditions = append(conditions, fmt.Sprintf("unit_id = $%d", argNum))
		args = append(args, *filter.UnitID)
		argNum++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR code ILIKE $%d OR body ILIKE $%d)", argNum, argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM complaints %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count complaints")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM complaints %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		complaintColumns, whereClause, argNum, argNum+1,
	)
	args = append(args, filter.PageSize(), filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list complaints")
	}
	defer rows.Close()

	var complaints []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		err := rows.Scan(
			&c.ID, &c.Code, &c.CategoryID, &c.Title, &c.Body,
			&c.Reporter.Name, &c.Reporter.Email, &c.Reporter.Phone, &c.Anonymous,
			&c.Location, &c.IncidentDate, &c.EvidenceRef,
			&c.Status, &c.UnitID, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan complaint")
		}
		complaints = append(complaints, c)
	}

	return complaints, total, rows.Err()
}

// Delete hard-deletes a complaint; status history and dispositions cascade
func (r *PostgresRepository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete complaint")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("complaint", id.String())
	}
	return nil
}
