package repository

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "shelftrack/internal/database"
	"shelftrack/internal/domain"
	"shelftrack/pkg/database"
	"shelftrack/pkg/logger"
)

func newTestDB(t *testing.T) (*sqlx.DB, logger.Logger) {
	t.Helper()

	log := logger.New(logger.LogLevel("error"), io.Discard)
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, internaldb.NewMigrationService(db, log).RunMigrations())
	return db, log
}

func seedUser(t *testing.T, repo domain.UserRepository, name, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, repo.Create(user))
	return user
}

func seedBook(t *testing.T, db *sqlx.DB, log logger.Logger, title, author, isbn string, stock int) *domain.Book {
	t.Helper()

	categories := NewCategoryRepository(db, log)
	category := &domain.Category{Name: "Category " + isbn}
	require.NoError(t, categories.Create(category))

	books := NewBookRepository(db, log)
	book := &domain.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		Stock:           stock,
		PublicationYear: 2020,
		Publisher:       "Press",
		CategoryID:      category.ID,
	}
	require.NoError(t, books.Create(book))
	return book
}

func TestUserListExcludesAndSorts(t *testing.T) {
	db, log := newTestDB(t)
	repo := NewUserRepository(db, log)

	admin := seedUser(t, repo, "Zed Admin", "zed@test", domain.RoleAdmin)
	seedUser(t, repo, "Alice", "alice@test", domain.RoleMember)
	other := seedUser(t, repo, "Bob Admin", "bob@test", domain.RoleAdmin)

	users, total, err := repo.List(domain.UserFilter{ExcludeID: admin.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)

	// Admins come before members.
	assert.Equal(t, other.ID, users[0].ID)
	assert.Equal(t, domain.RoleMember, users[1].Role)
}

func TestUserListSearch(t *testing.T) {
	db, log := newTestDB(t)
	repo := NewUserRepository(db, log)

	seedUser(t, repo, "Dewi Lestari", "dewi@test", domain.RoleMember)
	seedUser(t, repo, "Budi Santoso", "budi@test", domain.RoleMember)

	users, total, err := repo.List(domain.UserFilter{Search: "dewi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Dewi Lestari", users[0].Name)
}

func TestEmailTakenExcludesOwnRow(t *testing.T) {
	db, log := newTestDB(t)
	repo := NewUserRepository(db, log)

	user := seedUser(t, repo, "Dewi", "dewi@test", domain.RoleMember)

	taken, err := repo.EmailTaken("dewi@test", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTaken("dewi@test", user.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestBookListFilters(t *testing.T) {
	db, log := newTestDB(t)
	repo := NewBookRepository(db, log)

	golang := seedBook(t, db, log, "The Go Programming Language", "Donovan", "isbn-1", 2)
	seedBook(t, db, log, "Clean Code", "Martin", "isbn-2", 1)

	books, total, err := repo.List(domain.BookFilter{Title: "go programming"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, books, 1)
	assert.Equal(t, golang.ID, books[0].ID)
	require.NotNil(t, books[0].Category)

	books, total, err = repo.List(domain.BookFilter{Author: "martin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Clean Code", books[0].Title)

	_, total, err = repo.List(domain.BookFilter{CategoryID: golang.CategoryID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBorrowingListSearchMatchesBorrowerAndTitle(t *testing.T) {
	db, log := newTestDB(t)
	users := NewUserRepository(db, log)
	borrowings := NewBorrowingRepository(db, log)

	member := seedUser(t, users, "Dewi Lestari", "dewi@test", domain.RoleMember)
	book := seedBook(t, db, log, "Unique Title", "Author", "isbn-3", 1)

	loan := &domain.Borrowing{
		UserID:     member.ID,
		BookID:     book.ID,
		BorrowDate: "2024-01-01",
		DueDate:    "2024-01-15",
		Status:     domain.LoanStatusBorrowed,
	}
	require.NoError(t, borrowings.CreateWithStockDecrement(loan))

	byName, total, err := borrowings.List(domain.BorrowingFilter{Search: "dewi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byName, 1)
	require.NotNil(t, byName[0].User)
	require.NotNil(t, byName[0].Book)

	_, total, err = borrowings.List(domain.BorrowingFilter{Search: "unique title"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = borrowings.List(domain.BorrowingFilter{Search: "no match"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRecommendedExcludesHeldBooksAndEmptyStock(t *testing.T) {
	db, log := newTestDB(t)
	users := NewUserRepository(db, log)
	books := NewBookRepository(db, log)
	borrowings := NewBorrowingRepository(db, log)

	member := seedUser(t, users, "Reader", "reader@test", domain.RoleMember)
	held := seedBook(t, db, log, "Currently Held", "A", "isbn-4", 1)
	available := seedBook(t, db, log, "On the Shelf", "B", "isbn-5", 2)
	seedBook(t, db, log, "Out of Stock", "C", "isbn-6", 0)

	loan := &domain.Borrowing{
		UserID:     member.ID,
		BookID:     held.ID,
		BorrowDate: "2024-01-01",
		DueDate:    "2024-01-15",
		Status:     domain.LoanStatusBorrowed,
	}
	require.NoError(t, borrowings.CreateWithStockDecrement(loan))

	recommended, err := books.Recommended(member.ID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, available.ID, recommended[0].ID)
}
