package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/internal/domain"
)

func TestCreateBookValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	category := env.createCategory(t, "Programming")

	base := domain.CreateBookInput{
		Title:           "Clean Architecture",
		Author:          "Robert C. Martin",
		ISBN:            uniqueISBN(20),
		Stock:           3,
		PublicationYear: 2017,
		Publisher:       "Prentice Hall",
		CategoryID:      category.ID,
	}

	book, err := env.catalog.CreateBook(admin, base)
	require.NoError(t, err)
	require.NotNil(t, book.Category)
	assert.Equal(t, category.Name, book.Category.Name)

	tooOld := base
	tooOld.ISBN = uniqueISBN(21)
	tooOld.PublicationYear = 1799
	_, err = env.catalog.CreateBook(admin, tooOld)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	future := base
	future.ISBN = uniqueISBN(22)
	future.PublicationYear = time.Now().Year() + 1
	_, err = env.catalog.CreateBook(admin, future)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	negativeStock := base
	negativeStock.ISBN = uniqueISBN(23)
	negativeStock.Stock = -1
	_, err = env.catalog.CreateBook(admin, negativeStock)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	missingCategory := base
	missingCategory.ISBN = uniqueISBN(24)
	missingCategory.CategoryID = 9999
	_, err = env.catalog.CreateBook(admin, missingCategory)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestISBNUniqueness(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	category := env.createCategory(t, "Fiction")

	first, err := env.catalog.CreateBook(admin, domain.CreateBookInput{
		Title:           "First",
		Author:          "A",
		ISBN:            uniqueISBN(30),
		Stock:           1,
		PublicationYear: 2001,
		Publisher:       "P",
		CategoryID:      category.ID,
	})
	require.NoError(t, err)

	_, err = env.catalog.CreateBook(admin, domain.CreateBookInput{
		Title:           "Second",
		Author:          "B",
		ISBN:            uniqueISBN(30),
		Stock:           1,
		PublicationYear: 2002,
		Publisher:       "P",
		CategoryID:      category.ID,
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// A book keeps its own ISBN on update.
	title := "First, revised"
	updated, err := env.catalog.UpdateBook(admin, first.ID, domain.UpdateBookInput{
		Title: &title,
		ISBN:  &first.ISBN,
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestDeleteBookGuardedByActiveLoans(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Borrowed Book", uniqueISBN(31), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	err = env.catalog.DeleteBook(admin, book.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = env.loans.ReturnLoan(admin, loan.ID)
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteBook(admin, book.ID))

	_, err = env.catalog.GetBook(book.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// The returned loan history goes with the book.
	gone, err := env.borrowings.FindByID(loan.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteCategoryGuardedByBooks(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	book := env.createBook(t, "Categorized", uniqueISBN(32), 1)

	err := env.catalog.DeleteCategory(admin, book.CategoryID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, env.catalog.DeleteBook(admin, book.ID))
	require.NoError(t, env.catalog.DeleteCategory(admin, book.CategoryID))
}

func TestCategoryNameUniqueness(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)

	created, err := env.catalog.CreateCategory(admin, domain.CreateCategoryInput{Name: "History"})
	require.NoError(t, err)

	_, err = env.catalog.CreateCategory(admin, domain.CreateCategoryInput{Name: "History"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// Renaming a category to its current name stays legal.
	updated, err := env.catalog.UpdateCategory(admin, created.ID, domain.UpdateCategoryInput{Name: &created.Name})
	require.NoError(t, err)
	assert.Equal(t, "History", updated.Name)
}
