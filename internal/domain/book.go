package domain

import (
	"io"
	"time"
)

type Book struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	ISBN            string    `db:"isbn" json:"isbn"`
	Description     *string   `db:"description" json:"description"`
	CoverImage      *string   `db:"cover_image" json:"cover_image"`
	Stock           int       `db:"stock" json:"stock"`
	PublicationYear int       `db:"publication_year" json:"publication_year"`
	Publisher       string    `db:"publisher" json:"publisher"`
	CategoryID      int64     `db:"category_id" json:"category_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	// Loaded by an explicit join, never implicitly.
	Category *Category `db:"-" json:"category,omitempty"`
}

type BookFilter struct {
	Title      string
	Author     string
	CategoryID int64
	Page       int
	PerPage    int
}

type BookRepository interface {
	FindByID(id int64) (*Book, error)
	FindByISBN(isbn string) (*Book, error)
	ISBNTaken(isbn string, excludeID int64) (bool, error)
	List(filter BookFilter) ([]*Book, int64, error)
	CountActiveBorrowings(bookID int64) (int64, error)
	// Recommended returns available books from the categories the member
	// borrows from most, topped up with overall popular books.
	Recommended(userID int64, limit int) ([]*Book, error)
	Create(book *Book) error
	Update(book *Book) error
	Delete(id int64) error
}

// CoverUpload is an incoming cover image; the catalog stores it through the
// asset store and keeps only the returned reference.
type CoverUpload struct {
	Filename string
	Content  io.Reader
}

type CreateBookInput struct {
	Title           string
	Author          string
	ISBN            string
	Description     *string
	Stock           int
	PublicationYear int
	Publisher       string
	CategoryID      int64
	Cover           *CoverUpload
}

type UpdateBookInput struct {
	Title           *string
	Author          *string
	ISBN            *string
	Description     *string
	Stock           *int
	PublicationYear *int
	Publisher       *string
	CategoryID      *int64
	Cover           *CoverUpload
	RemoveCover     bool
}

type CatalogService interface {
	ListCategories() ([]*Category, error)
	GetCategory(id int64) (*Category, error)
	CreateCategory(actor *User, input CreateCategoryInput) (*Category, error)
	UpdateCategory(actor *User, id int64, input UpdateCategoryInput) (*Category, error)
	DeleteCategory(actor *User, id int64) error

	ListBooks(filter BookFilter) ([]*Book, int64, error)
	GetBook(id int64) (*Book, error)
	CreateBook(actor *User, input CreateBookInput) (*Book, error)
	UpdateBook(actor *User, id int64, input UpdateBookInput) (*Book, error)
	DeleteBook(actor *User, id int64) error
	Recommendations(actor *User, limit int) ([]*Book, error)
}
