package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	internaldb "shelftrack/internal/database"
	"shelftrack/internal/domain"
	"shelftrack/internal/repository"
	"shelftrack/pkg/database"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/storage"
)

// memoryTokenRepo stands in for the redis-backed token store so auth tests
// run without external services.
type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]int64
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]int64)}
}

func (m *memoryTokenRepo) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memoryTokenRepo) Resolve(ctx context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[token]
	if !ok {
		return 0, domain.ErrUnauthenticated
	}
	return userID, nil
}

func (m *memoryTokenRepo) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type testEnv struct {
	users      domain.UserRepository
	categories domain.CategoryRepository
	books      domain.BookRepository
	borrowings domain.BorrowingRepository
	tokens     *memoryTokenRepo

	auth    domain.AuthService
	members domain.MemberService
	catalog domain.CatalogService
	loans   domain.LoanService
	reports domain.ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.New(logger.LogLevel("error"), io.Discard)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, internaldb.NewMigrationService(db, log).RunMigrations())

	store, err := storage.NewDiskStore(t.TempDir(), log)
	require.NoError(t, err)

	env := &testEnv{
		users:      repository.NewUserRepository(db, log),
		categories: repository.NewCategoryRepository(db, log),
		books:      repository.NewBookRepository(db, log),
		borrowings: repository.NewBorrowingRepository(db, log),
		tokens:     newMemoryTokenRepo(),
	}

	audit := NewAuditLogService(repository.NewAuditLogRepository(db, log), log)
	env.auth = NewAuthService(env.users, env.tokens, audit, time.Hour, log)
	env.members = NewMemberService(env.users, env.borrowings, audit, log)
	env.catalog = NewCatalogService(env.categories, env.books, store, audit, log)
	env.loans = NewLoanService(env.borrowings, env.books, env.users, audit, log)
	env.reports = NewReportService(repository.NewReportRepository(db, log), log)

	return env
}

func (e *testEnv) createUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) createAdmin(t *testing.T) *domain.User {
	return e.createUser(t, "Admin", "admin@shelftrack.test", domain.RoleAdmin)
}

func (e *testEnv) createMember(t *testing.T, email string) *domain.User {
	return e.createUser(t, "Member "+email, email, domain.RoleMember)
}

func (e *testEnv) createCategory(t *testing.T, name string) *domain.Category {
	t.Helper()

	category := &domain.Category{Name: name}
	require.NoError(t, e.categories.Create(category))
	return category
}

func (e *testEnv) createBook(t *testing.T, title, isbn string, stock int) *domain.Book {
	t.Helper()

	category := e.createCategory(t, "Category for "+isbn)
	book := &domain.Book{
		Title:           title,
		Author:          "Test Author",
		ISBN:            isbn,
		Stock:           stock,
		PublicationYear: 2020,
		Publisher:       "Test Press",
		CategoryID:      category.ID,
	}
	require.NoError(t, e.books.Create(book))
	return book
}

func daysFromNow(n int) string {
	return time.Now().AddDate(0, 0, n).Format(domain.DateLayout)
}

func uniqueISBN(n int) string {
	return fmt.Sprintf("978-0-000-%05d-0", n)
}
