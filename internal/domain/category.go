package domain

import "time"

type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CategoryRepository interface {
	FindByID(id int64) (*Category, error)
	FindAll() ([]*Category, error)
	NameTaken(name string, excludeID int64) (bool, error)
	CountBooks(categoryID int64) (int64, error)
	Create(category *Category) error
	Update(category *Category) error
	Delete(id int64) error
}

type CreateCategoryInput struct {
	Name        string
	Description *string
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
}
