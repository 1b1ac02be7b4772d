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

const borrowingColumns = `id, user_id, book_id, borrow_date, due_date, return_date, status, notes, created_at, updated_at`

type BorrowingRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewBorrowingRepository(db *sqlx.DB, logger logger.Logger) domain.BorrowingRepository {
	return &BorrowingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BorrowingRepository) FindByID(id int64) (*domain.Borrowing, error) {
	var borrowing domain.Borrowing
	err := r.db.Get(&borrowing, `SELECT `+borrowingColumns+` FROM borrowings WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load borrowing", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("could not load borrowing: %w", err)
	}

	if err := attachBorrowingRelations(r.db, []*domain.Borrowing{&borrowing}); err != nil {
		return nil, err
	}

	return &borrowing, nil
}

func (r *BorrowingRepository) List(filter domain.BorrowingFilter) ([]*domain.Borrowing, int64, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)

	base := dialect.From(goqu.T("borrowings").As("br")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("br.user_id")})).
		Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("br.book_id")}))

	if filter.Status != "" {
		base = base.Where(goqu.I("br.status").Eq(string(filter.Status)))
	}
	if filter.UserID != 0 {
		base = base.Where(goqu.I("br.user_id").Eq(filter.UserID))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where(goqu.Or(
			goqu.I("u.name").ILike(pattern),
			goqu.I("b.title").ILike(pattern),
		))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build borrowing count query: %w", err)
	}

	var total int64
	if err := r.db.Get(&total, countSQL, countArgs...); err != nil {
		r.logger.Error("Could not count borrowings", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not count borrowings: %w", err)
	}

	listSQL, listArgs, err := base.
		Select(goqu.I("br.id"), goqu.I("br.user_id"), goqu.I("br.book_id"), goqu.I("br.borrow_date"),
			goqu.I("br.due_date"), goqu.I("br.return_date"), goqu.I("br.status"), goqu.I("br.notes"),
			goqu.I("br.created_at"), goqu.I("br.updated_at")).
		Order(goqu.I("br.id").Desc()).
		Limit(uint(perPage)).
		Offset(uint((page - 1) * perPage)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build borrowing list query: %w", err)
	}

	borrowings := make([]*domain.Borrowing, 0)
	if err := r.db.Select(&borrowings, listSQL, listArgs...); err != nil {
		r.logger.Error("Could not list borrowings", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not list borrowings: %w", err)
	}

	if err := attachBorrowingRelations(r.db, borrowings); err != nil {
		return nil, 0, err
	}

	return borrowings, total, nil
}

// CreateWithStockDecrement makes the loan insert and the stock decrement one
// atomic unit. The decrement is a guarded conditional update, so two
// concurrent creations can never drive stock negative: the loser's update
// affects zero rows and the whole transaction rolls back.
func (r *BorrowingRepository) CreateWithStockDecrement(b *domain.Borrowing) error {
	started := time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE books SET stock = stock - 1, updated_at = ? WHERE id = ? AND stock > 0`,
		time.Now(), b.BookID,
	)
	if err != nil {
		r.logger.Error("Could not decrement stock", map[string]interface{}{"book_id": b.BookID, "error": err.Error()})
		return fmt.Errorf("could not decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrOutOfStock
	}

	now := time.Now()
	b.Status = domain.LoanStatusBorrowed
	b.CreatedAt = now
	b.UpdatedAt = now

	insert, err := tx.Exec(
		`INSERT INTO borrowings (user_id, book_id, borrow_date, due_date, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.BookID, b.BorrowDate, b.DueDate, b.Status, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Could not create borrowing", map[string]interface{}{"book_id": b.BookID, "error": err.Error()})
		return fmt.Errorf("could not create borrowing: %w", err)
	}

	b.ID, err = insert.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not read new borrowing id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit borrowing: %w", err)
	}

	metrics.RecordDatabaseOperation("create", "borrowing", time.Since(started))
	return nil
}

// ReturnWithStockIncrement closes the loan and restores stock atomically.
// The status update is guarded against already-returned loans, which makes
// the returned state terminal at the storage layer as well.
func (r *BorrowingRepository) ReturnWithStockIncrement(id int64, returnDate string) error {
	started := time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE borrowings SET return_date = ?, status = ?, updated_at = ? WHERE id = ? AND status != ?`,
		returnDate, domain.LoanStatusReturned, time.Now(), id, domain.LoanStatusReturned,
	)
	if err != nil {
		r.logger.Error("Could not close borrowing", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not close borrowing: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyReturned
	}

	if _, err := tx.Exec(
		`UPDATE books SET stock = stock + 1, updated_at = ?
		 WHERE id = (SELECT book_id FROM borrowings WHERE id = ?)`,
		time.Now(), id,
	); err != nil {
		r.logger.Error("Could not increment stock", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not increment stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit return: %w", err)
	}

	metrics.RecordDatabaseOperation("return", "borrowing", time.Since(started))
	return nil
}

func (r *BorrowingRepository) ExtendDueDate(id int64, newDueDate string, notes string) error {
	started := time.Now()

	res, err := r.db.Exec(
		`UPDATE borrowings SET due_date = ?, notes = ?, updated_at = ? WHERE id = ? AND status != ?`,
		newDueDate, notes, time.Now(), id, domain.LoanStatusReturned,
	)
	if err != nil {
		r.logger.Error("Could not extend borrowing", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not extend borrowing: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyReturned
	}

	metrics.RecordDatabaseOperation("extend", "borrowing", time.Since(started))
	return nil
}

func (r *BorrowingRepository) MarkOverdue(today string) (int64, error) {
	started := time.Now()

	res, err := r.db.Exec(
		`UPDATE borrowings SET status = ?, updated_at = ? WHERE status = ? AND due_date < ?`,
		domain.LoanStatusOverdue, time.Now(), domain.LoanStatusBorrowed, today,
	)
	if err != nil {
		r.logger.Error("Could not flag overdue borrowings", map[string]interface{}{"error": err.Error()})
		return 0, fmt.Errorf("could not flag overdue borrowings: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	metrics.RecordDatabaseOperation("mark_overdue", "borrowing", time.Since(started))
	return affected, nil
}

func (r *BorrowingRepository) CountActiveByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Get(&count,
		`SELECT COUNT(*) FROM borrowings WHERE user_id = ? AND status IN (?, ?)`,
		userID, domain.LoanStatusBorrowed, domain.LoanStatusOverdue)
	if err != nil {
		return 0, fmt.Errorf("could not count active borrowings: %w", err)
	}
	return count, nil
}

// attachBorrowingRelations loads the borrower and book rows in two explicit
// queries and fans them out over the loans.
func attachBorrowingRelations(db *sqlx.DB, borrowings []*domain.Borrowing) error {
	if len(borrowings) == 0 {
		return nil
	}

	userIDs := make([]interface{}, 0, len(borrowings))
	bookIDs := make([]interface{}, 0, len(borrowings))
	seenUsers := make(map[int64]bool)
	seenBooks := make(map[int64]bool)
	for _, b := range borrowings {
		if !seenUsers[b.UserID] {
			seenUsers[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
		if !seenBooks[b.BookID] {
			seenBooks[b.BookID] = true
			bookIDs = append(bookIDs, b.BookID)
		}
	}

	query, args, err := sqlx.In(
		`SELECT id, name, email, password_hash, role, phone_number, address, created_at, updated_at
		 FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return fmt.Errorf("could not build user lookup: %w", err)
	}
	users := make([]*domain.User, 0, len(userIDs))
	if err := db.Select(&users, db.Rebind(query), args...); err != nil {
		return fmt.Errorf("could not load borrowers: %w", err)
	}

	query, args, err = sqlx.In(`SELECT `+bookColumns+` FROM books WHERE id IN (?)`, bookIDs)
	if err != nil {
		return fmt.Errorf("could not build book lookup: %w", err)
	}
	books := make([]*domain.Book, 0, len(bookIDs))
	if err := db.Select(&books, db.Rebind(query), args...); err != nil {
		return fmt.Errorf("could not load borrowed books: %w", err)
	}

	usersByID := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	booksByID := make(map[int64]*domain.Book, len(books))
	for _, b := range books {
		booksByID[b.ID] = b
	}
	for _, b := range borrowings {
		b.User = usersByID[b.UserID]
		b.Book = booksByID[b.BookID]
	}

	return nil
}
