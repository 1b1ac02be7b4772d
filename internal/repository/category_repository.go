package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/metrics"
)

type CategoryRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewCategoryRepository(db *sqlx.DB, logger logger.Logger) domain.CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) FindByID(id int64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.Get(&category,
		`SELECT id, name, description, created_at, updated_at FROM categories WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load category", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("could not load category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepository) FindAll() ([]*domain.Category, error) {
	categories := make([]*domain.Category, 0)
	err := r.db.Select(&categories,
		`SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		r.logger.Error("Could not list categories", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not list categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) NameTaken(name string, excludeID int64) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM categories WHERE name = ? AND id != ?`, name, excludeID)
	if err != nil {
		return false, fmt.Errorf("could not check category name uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *CategoryRepository) CountBooks(categoryID int64) (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM books WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("could not count books in category: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) Create(category *domain.Category) error {
	started := time.Now()

	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	res, err := r.db.Exec(
		`INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Could not create category", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("could not create category: %w", err)
	}

	category.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not read new category id: %w", err)
	}

	metrics.RecordDatabaseOperation("create", "category", time.Since(started))
	return nil
}

func (r *CategoryRepository) Update(category *domain.Category) error {
	started := time.Now()
	category.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.Description, category.UpdatedAt, category.ID,
	)
	if err != nil {
		r.logger.Error("Could not update category", map[string]interface{}{"id": category.ID, "error": err.Error()})
		return fmt.Errorf("could not update category: %w", err)
	}

	metrics.RecordDatabaseOperation("update", "category", time.Since(started))
	return nil
}

func (r *CategoryRepository) Delete(id int64) error {
	started := time.Now()

	_, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Could not delete category", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not delete category: %w", err)
	}

	metrics.RecordDatabaseOperation("delete", "category", time.Since(started))
	return nil
}
