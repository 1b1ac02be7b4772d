package service

import (
	"fmt"
	"time"

	"shelftrack/internal/domain"
	"shelftrack/internal/validation"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/storage"
)

// minPublicationYear is the oldest year the catalog accepts for a book.
const minPublicationYear = 1800

type CatalogService struct {
	categories domain.CategoryRepository
	books      domain.BookRepository
	covers     storage.Store
	audit      domain.AuditLogService
	logger     logger.Logger
}

func NewCatalogService(categories domain.CategoryRepository, books domain.BookRepository, covers storage.Store, audit domain.AuditLogService, log logger.Logger) domain.CatalogService {
	return &CatalogService{
		categories: categories,
		books:      books,
		covers:     covers,
		audit:      audit,
		logger:     log,
	}
}

func (s *CatalogService) ListCategories() ([]*domain.Category, error) {
	return s.categories.FindAll()
}

func (s *CatalogService) GetCategory(id int64) (*domain.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up category: %w", err)
	}
	if category == nil {
		return nil, &domain.NotFoundError{Resource: "category"}
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(actor *domain.User, input domain.CreateCategoryInput) (*domain.Category, error) {
	v := validation.New()
	v.Check(input.Name != "", "name", "name is required")
	v.Check(validation.MaxChars(input.Name, 255), "name", "name must not exceed 255 characters")

	if v.Valid() {
		taken, err := s.categories.NameTaken(input.Name, 0)
		if err != nil {
			return nil, fmt.Errorf("checking category name: %w", err)
		}
		v.Check(!taken, "name", "a category with this name already exists")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	category := &domain.Category{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.categories.Create(category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.audit.Record(domain.EntityTypeCategory, category.ID, domain.ActionTypeCreate, fmt.Sprintf("created category %q", category.Name))

	return category, nil
}

func (s *CatalogService) UpdateCategory(actor *domain.User, id int64, input domain.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up category: %w", err)
	}
	if category == nil {
		return nil, &domain.NotFoundError{Resource: "category"}
	}

	v := validation.New()
	if input.Name != nil {
		v.Check(*input.Name != "", "name", "name is required")
		v.Check(validation.MaxChars(*input.Name, 255), "name", "name must not exceed 255 characters")
		if v.Valid() {
			taken, err := s.categories.NameTaken(*input.Name, category.ID)
			if err != nil {
				return nil, fmt.Errorf("checking category name: %w", err)
			}
			v.Check(!taken, "name", "a category with this name already exists")
		}
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}

	if err := s.categories.Update(category); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}

	s.audit.Record(domain.EntityTypeCategory, category.ID, domain.ActionTypeUpdate, fmt.Sprintf("updated category %q", category.Name))

	return category, nil
}

func (s *CatalogService) DeleteCategory(actor *domain.User, id int64) error {
	category, err := s.categories.FindByID(id)
	if err != nil {
		return fmt.Errorf("looking up category: %w", err)
	}
	if category == nil {
		return &domain.NotFoundError{Resource: "category"}
	}

	count, err := s.categories.CountBooks(id)
	if err != nil {
		return fmt.Errorf("counting category books: %w", err)
	}
	if count > 0 {
		return &domain.ConflictError{Reason: "category still has books assigned to it"}
	}

	if err := s.categories.Delete(id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	s.audit.Record(domain.EntityTypeCategory, id, domain.ActionTypeDelete, fmt.Sprintf("deleted category %q", category.Name))

	return nil
}

func (s *CatalogService) ListBooks(filter domain.BookFilter) ([]*domain.Book, int64, error) {
	return s.books.List(filter)
}

func (s *CatalogService) GetBook(id int64) (*domain.Book, error) {
	book, err := s.books.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return nil, &domain.NotFoundError{Resource: "book"}
	}
	return book, nil
}

func (s *CatalogService) CreateBook(actor *domain.User, input domain.CreateBookInput) (*domain.Book, error) {
	v := validation.New()
	s.checkBookFields(v, input.Title, input.Author, input.Publisher, input.Stock, input.PublicationYear)
	v.Check(input.ISBN != "", "isbn", "isbn is required")

	if v.Valid() {
		taken, err := s.books.ISBNTaken(input.ISBN, 0)
		if err != nil {
			return nil, fmt.Errorf("checking isbn: %w", err)
		}
		v.Check(!taken, "isbn", "a book with this isbn already exists")
	}
	if input.CategoryID > 0 {
		category, err := s.categories.FindByID(input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("looking up category: %w", err)
		}
		v.Check(category != nil, "category_id", "category does not exist")
	} else {
		v.Check(false, "category_id", "category_id is required")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	book := &domain.Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Description:     input.Description,
		Stock:           input.Stock,
		PublicationYear: input.PublicationYear,
		Publisher:       input.Publisher,
		CategoryID:      input.CategoryID,
	}

	if input.Cover != nil {
		ref, err := s.covers.Save(input.Cover.Filename, input.Cover.Content)
		if err != nil {
			return nil, fmt.Errorf("storing cover image: %w", err)
		}
		book.CoverImage = &ref
	}

	if err := s.books.Create(book); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	s.audit.Record(domain.EntityTypeBook, book.ID, domain.ActionTypeCreate, fmt.Sprintf("created book %q", book.Title))

	return s.GetBook(book.ID)
}

func (s *CatalogService) UpdateBook(actor *domain.User, id int64, input domain.UpdateBookInput) (*domain.Book, error) {
	book, err := s.books.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return nil, &domain.NotFoundError{Resource: "book"}
	}

	v := validation.New()
	if input.Title != nil {
		v.Check(*input.Title != "", "title", "title is required")
		v.Check(validation.MaxChars(*input.Title, 255), "title", "title must not exceed 255 characters")
	}
	if input.Author != nil {
		v.Check(*input.Author != "", "author", "author is required")
		v.Check(validation.MaxChars(*input.Author, 255), "author", "author must not exceed 255 characters")
	}
	if input.Publisher != nil {
		v.Check(*input.Publisher != "", "publisher", "publisher is required")
		v.Check(validation.MaxChars(*input.Publisher, 255), "publisher", "publisher must not exceed 255 characters")
	}
	if input.Stock != nil {
		v.Check(*input.Stock >= 0, "stock", "stock must be zero or greater")
	}
	if input.PublicationYear != nil {
		v.Check(*input.PublicationYear >= minPublicationYear, "publication_year", fmt.Sprintf("publication year must be %d or later", minPublicationYear))
		v.Check(*input.PublicationYear <= time.Now().Year(), "publication_year", "publication year cannot be in the future")
	}
	if input.ISBN != nil {
		v.Check(*input.ISBN != "", "isbn", "isbn is required")
		if v.Valid() {
			taken, err := s.books.ISBNTaken(*input.ISBN, book.ID)
			if err != nil {
				return nil, fmt.Errorf("checking isbn: %w", err)
			}
			v.Check(!taken, "isbn", "a book with this isbn already exists")
		}
	}
	if input.CategoryID != nil {
		category, err := s.categories.FindByID(*input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("looking up category: %w", err)
		}
		v.Check(category != nil, "category_id", "category does not exist")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Description != nil {
		book.Description = input.Description
	}
	if input.Stock != nil {
		book.Stock = *input.Stock
	}
	if input.PublicationYear != nil {
		book.PublicationYear = *input.PublicationYear
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.CategoryID != nil {
		book.CategoryID = *input.CategoryID
	}

	oldCover := book.CoverImage
	switch {
	case input.Cover != nil:
		ref, err := s.covers.Save(input.Cover.Filename, input.Cover.Content)
		if err != nil {
			return nil, fmt.Errorf("storing cover image: %w", err)
		}
		book.CoverImage = &ref
	case input.RemoveCover:
		book.CoverImage = nil
	}

	if err := s.books.Update(book); err != nil {
		return nil, fmt.Errorf("updating book: %w", err)
	}

	// The old asset is orphaned once the row points elsewhere; removal
	// failures only leak disk space.
	if oldCover != nil && (input.Cover != nil || input.RemoveCover) {
		if err := s.covers.Remove(*oldCover); err != nil {
			s.logger.Warn("Failed to remove old cover image", map[string]interface{}{
				"book_id": book.ID,
				"ref":     *oldCover,
				"error":   err.Error(),
			})
		}
	}

	s.audit.Record(domain.EntityTypeBook, book.ID, domain.ActionTypeUpdate, fmt.Sprintf("updated book %q", book.Title))

	return s.GetBook(book.ID)
}

func (s *CatalogService) DeleteBook(actor *domain.User, id int64) error {
	book, err := s.books.FindByID(id)
	if err != nil {
		return fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return &domain.NotFoundError{Resource: "book"}
	}

	active, err := s.books.CountActiveBorrowings(id)
	if err != nil {
		return fmt.Errorf("counting active borrowings: %w", err)
	}
	if active > 0 {
		return &domain.ConflictError{Reason: "book is currently borrowed and cannot be deleted"}
	}

	if err := s.books.Delete(id); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	if book.CoverImage != nil {
		if err := s.covers.Remove(*book.CoverImage); err != nil {
			s.logger.Warn("Failed to remove cover image", map[string]interface{}{
				"book_id": id,
				"ref":     *book.CoverImage,
				"error":   err.Error(),
			})
		}
	}

	s.audit.Record(domain.EntityTypeBook, id, domain.ActionTypeDelete, fmt.Sprintf("deleted book %q", book.Title))

	return nil
}

func (s *CatalogService) Recommendations(actor *domain.User, limit int) ([]*domain.Book, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.books.Recommended(actor.ID, limit)
}

func (s *CatalogService) checkBookFields(v *validation.Validator, title, author, publisher string, stock, year int) {
	v.Check(title != "", "title", "title is required")
	v.Check(validation.MaxChars(title, 255), "title", "title must not exceed 255 characters")
	v.Check(author != "", "author", "author is required")
	v.Check(validation.MaxChars(author, 255), "author", "author must not exceed 255 characters")
	v.Check(publisher != "", "publisher", "publisher is required")
	v.Check(validation.MaxChars(publisher, 255), "publisher", "publisher must not exceed 255 characters")
	v.Check(stock >= 0, "stock", "stock must be zero or greater")
	v.Check(year >= minPublicationYear, "publication_year", fmt.Sprintf("publication year must be %d or later", minPublicationYear))
	v.Check(year <= time.Now().Year(), "publication_year", "publication year cannot be in the future")
}
