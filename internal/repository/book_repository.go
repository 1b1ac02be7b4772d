package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/metrics"
)

const bookColumns = `id, title, author, isbn, description, cover_image, stock, publication_year, publisher, category_id, created_at, updated_at`

type BookRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewBookRepository(db *sqlx.DB, logger logger.Logger) domain.BookRepository {
	return &BookRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BookRepository) FindByID(id int64) (*domain.Book, error) {
	var book domain.Book
	err := r.db.Get(&book, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load book", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("could not load book: %w", err)
	}

	if err := r.attachCategories([]*domain.Book{&book}); err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *BookRepository) FindByISBN(isbn string) (*domain.Book, error) {
	var book domain.Book
	err := r.db.Get(&book, `SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load book by isbn", map[string]interface{}{"isbn": isbn, "error": err.Error()})
		return nil, fmt.Errorf("could not load book: %w", err)
	}

	return &book, nil
}

func (r *BookRepository) ISBNTaken(isbn string, excludeID int64) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM books WHERE isbn = ? AND id != ?`, isbn, excludeID)
	if err != nil {
		return false, fmt.Errorf("could not check isbn uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *BookRepository) List(filter domain.BookFilter) ([]*domain.Book, int64, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)

	base := dialect.From("books")
	if filter.Title != "" {
		base = base.Where(goqu.C("title").ILike("%" + filter.Title + "%"))
	}
	if filter.Author != "" {
		base = base.Where(goqu.C("author").ILike("%" + filter.Author + "%"))
	}
	if filter.CategoryID != 0 {
		base = base.Where(goqu.C("category_id").Eq(filter.CategoryID))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build book count query: %w", err)
	}

	var total int64
	if err := r.db.Get(&total, countSQL, countArgs...); err != nil {
		r.logger.Error("Could not count books", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not count books: %w", err)
	}

	listSQL, listArgs, err := base.
		Select("id", "title", "author", "isbn", "description", "cover_image", "stock",
			"publication_year", "publisher", "category_id", "created_at", "updated_at").
		Order(goqu.C("title").Asc()).
		Limit(uint(perPage)).
		Offset(uint((page - 1) * perPage)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build book list query: %w", err)
	}

	books := make([]*domain.Book, 0)
	if err := r.db.Select(&books, listSQL, listArgs...); err != nil {
		r.logger.Error("Could not list books", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not list books: %w", err)
	}

	if err := r.attachCategories(books); err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (r *BookRepository) CountActiveBorrowings(bookID int64) (int64, error) {
	var count int64
	err := r.db.Get(&count,
		`SELECT COUNT(*) FROM borrowings WHERE book_id = ? AND status IN (?, ?)`,
		bookID, domain.LoanStatusBorrowed, domain.LoanStatusOverdue)
	if err != nil {
		return 0, fmt.Errorf("could not count active borrowings: %w", err)
	}
	return count, nil
}

func (r *BookRepository) Recommended(userID int64, limit int) ([]*domain.Book, error) {
	// Available books the member does not currently hold, preferring
	// categories they have borrowed from, then overall popularity.
	query := `
		SELECT ` + bookColumns + ` FROM books b
		WHERE b.stock > 0
		  AND b.id NOT IN (
			SELECT book_id FROM borrowings WHERE user_id = ? AND status IN (?, ?)
		  )
		ORDER BY
		  b.category_id IN (
			SELECT bb.category_id FROM borrowings br JOIN books bb ON bb.id = br.book_id WHERE br.user_id = ?
		  ) DESC,
		  (SELECT COUNT(*) FROM borrowings br2 WHERE br2.book_id = b.id) DESC,
		  b.created_at DESC
		LIMIT ?`

	books := make([]*domain.Book, 0)
	err := r.db.Select(&books, query,
		userID, domain.LoanStatusBorrowed, domain.LoanStatusOverdue, userID, limit)
	if err != nil {
		r.logger.Error("Could not load recommendations", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("could not load recommendations: %w", err)
	}

	if err := r.attachCategories(books); err != nil {
		return nil, err
	}

	return books, nil
}

func (r *BookRepository) Create(book *domain.Book) error {
	started := time.Now()

	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	res, err := r.db.Exec(
		`INSERT INTO books (title, author, isbn, description, cover_image, stock, publication_year, publisher, category_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.Title, book.Author, book.ISBN, book.Description, book.CoverImage, book.Stock,
		book.PublicationYear, book.Publisher, book.CategoryID, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Could not create book", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("could not create book: %w", err)
	}

	book.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not read new book id: %w", err)
	}

	metrics.RecordDatabaseOperation("create", "book", time.Since(started))
	return nil
}

func (r *BookRepository) Update(book *domain.Book) error {
	started := time.Now()
	book.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`UPDATE books SET title = ?, author = ?, isbn = ?, description = ?, cover_image = ?, stock = ?, publication_year = ?, publisher = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		book.Title, book.Author, book.ISBN, book.Description, book.CoverImage, book.Stock,
		book.PublicationYear, book.Publisher, book.CategoryID, book.UpdatedAt, book.ID,
	)
	if err != nil {
		r.logger.Error("Could not update book", map[string]interface{}{"id": book.ID, "error": err.Error()})
		return fmt.Errorf("could not update book: %w", err)
	}

	metrics.RecordDatabaseOperation("update", "book", time.Since(started))
	return nil
}

func (r *BookRepository) Delete(id int64) error {
	started := time.Now()

	_, err := r.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Could not delete book", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not delete book: %w", err)
	}

	metrics.RecordDatabaseOperation("delete", "book", time.Since(started))
	return nil
}

// attachCategories resolves the category relation with one explicit
// follow-up query instead of per-row lookups.
func (r *BookRepository) attachCategories(books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]interface{}, 0, len(books))
	seen := make(map[int64]bool, len(books))
	for _, b := range books {
		if !seen[b.CategoryID] {
			seen[b.CategoryID] = true
			ids = append(ids, b.CategoryID)
		}
	}

	query, args, err := sqlx.In(
		`SELECT id, name, description, created_at, updated_at FROM categories WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("could not build category lookup: %w", err)
	}

	categories := make([]*domain.Category, 0, len(ids))
	if err := r.db.Select(&categories, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("could not load categories for books: %w", err)
	}

	byID := make(map[int64]*domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for _, b := range books {
		b.Category = byID[b.CategoryID]
	}

	return nil
}
