package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/metrics"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// Repository persists the audit chain in PostgreSQL. Appends are
// serialized behind a mutex so the prev_hash link is never raced.
type Repository struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	lastHash string
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Initialize loads the tip of the chain so appends continue it
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var hash string
	err := r.pool.QueryRow(ctx, `
		SELECT hash FROM audit_entries
		ORDER BY sequence DESC
		LIMIT 1`).Scan(&hash)

	if err != nil && !strings.Contains(err.Error(), "no rows") {
		return errors.Wrap(err, "failed to get last audit hash")
	}

	r.lastHash = hash
	return nil
}

// Append appends a new audit entry, linking it to the chain tip
func (r *Repository) Append(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.PrevHash = r.lastHash
	entry.Hash = entry.calculateHash()

	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return errors.Wrap(err, "failed to marshal changes")
	}

	query := `
		INSERT INTO audit_entries (
			id, timestamp, hash, prev_hash,
			actor_type, actor_id, actor_role,
			action, resource_type, resource_id, changes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING sequence`

	err = r.pool.QueryRow(ctx, query,
		entry.ID, entry.Timestamp, entry.Hash, entry.PrevHash,
		entry.ActorType, entry.ActorID, entry.ActorRole,
		entry.Action, entry.ResourceType, entry.ResourceID, changesJSON,
	).Scan(&entry.Sequence)

	if err != nil {
		return errors.Wrap(err, "failed to append audit entry")
	}

	r.lastHash = entry.Hash
	metrics.RecordAuditEntry()

	return nil
}

// ListFilter restricts audit queries
type ListFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

// List lists audit entries, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, int, error) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.ActorID != "" {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argNum))
		args = append(args, filter.ActorID)
		argNum++
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action LIKE $%d", argNum))
		args = append(args, filter.Action+"%")
		argNum++
	}
	if filter.ResourceType != "" {
		conditions = append(conditions, fmt.Sprintf("resource_type = $%d", argNum))
		args = append(args, filter.ResourceType)
		argNum++
	}
	if filter.ResourceID != "" {
		conditions = append(conditions, fmt.Sprintf("resource_id = $%d", argNum))
		args = append(args, filter.ResourceID)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_entries %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count audit entries")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT id, sequence, timestamp, hash, prev_hash,
			actor_type, actor_id, actor_role,
			action, resource_type, resource_id, changes
		FROM audit_entries %s
		ORDER BY sequence DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argNum, argNum+1,
	)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list audit entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var changesJSON []byte
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.Hash, &e.PrevHash,
			&e.ActorType, &e.ActorID, &e.ActorRole,
			&e.Action, &e.ResourceType, &e.ResourceID, &changesJSON,
		)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan audit entry")
		}
		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &e.Changes); err != nil {
				return nil, 0, errors.Wrap(err, "failed to unmarshal changes")
			}
		}
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}

// GetByResource returns the audit trail of one resource, oldest first
func (r *Repository) GetByResource(ctx context.Context, resourceType string, resourceID types.ID) ([]Entry, error) {
	entries, _, err := r.List(ctx, ListFilter{
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		Limit:        200,
	})
	if err != nil {
		return nil, err
	}

	// List returns newest first; the per-resource trail reads better
	// chronologically.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// VerifyResult reports the outcome of a chain verification
type VerifyResult struct {
	Checked  int    `json:"checked"`
	Valid    bool   `json:"valid"`
	BrokenAt *int64 `json:"broken_at,omitempty"`
}

// VerifyChain recomputes hashes over the whole chain in sequence order
func (r *Repository) VerifyChain(ctx context.Context) (*VerifyResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sequence, timestamp, hash, prev_hash,
			actor_type, actor_id, actor_role,
			action, resource_type, resource_id, changes
		FROM audit_entries
		ORDER BY sequence`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read audit chain")
	}
	defer rows.Close()

	result := &VerifyResult{Valid: true}
	prevHash := ""

	for rows.Next() {
		var e Entry
		var changesJSON []byte
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.Hash, &e.PrevHash,
			&e.ActorType, &e.ActorID, &e.ActorRole,
			&e.Action, &e.ResourceType, &e.ResourceID, &changesJSON,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan audit entry")
		}
		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &e.Changes); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal changes")
			}
		}

		result.Checked++
		if e.PrevHash != prevHash || !e.VerifyHash() {
			seq := e.Sequence
			result.Valid = false
			result.BrokenAt = &seq
			break
		}
		prevHash = e.Hash
	}

	return result, rows.Err()
}
