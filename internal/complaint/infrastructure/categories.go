package infrastructure

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, cat *domain.Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		cat.ID, cat.Name, cat.Description, cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.Validation("category name already in use", map[string]string{"name": cat.Name})
		}
		return errors.Wrap(err, "failed to create category")
	}
	return nil
}

// FindByID retrieves a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id types.ID) (*domain.Category, error) {
	cat := &domain.Category{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		WHERE id = $1`,
		id,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("category", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get category")
	}

	return cat, nil
}

// List lists all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, cat *domain.Category) error {
	cat.UpdatedAt = time.Now()

	tag, err := r.pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		cat.ID, cat.Name, cat.Description, cat.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update category")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("category", cat.ID.String())
	}

	return nil
}

// Delete deletes a category. Fails while complaints still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return errors.Validation("category still has complaints", nil)
		}
		return errors.Wrap(err, "failed to delete category")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("category", id.String())
	}

	return nil
}
