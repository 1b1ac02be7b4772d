package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type ReportRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewReportRepository(db *sqlx.DB, logger logger.Logger) domain.ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReportRepository) DashboardStats(today, monthStart, monthEnd string) (*domain.DashboardStats, error) {
	query := `
		SELECT
		  (SELECT COUNT(*) FROM books) AS total_books,
		  (SELECT COUNT(*) FROM books WHERE stock > 0) AS available_books,
		  (SELECT COUNT(*) FROM users WHERE role = 'member') AS total_members,
		  (SELECT COUNT(*) FROM borrowings WHERE status IN ('borrowed', 'overdue')) AS active_borrowings,
		  (SELECT COUNT(*) FROM borrowings WHERE status = 'overdue') AS overdue_borrowings,
		  (SELECT COUNT(*) FROM borrowings WHERE borrow_date = ?) AS borrowings_today,
		  (SELECT COUNT(*) FROM borrowings WHERE return_date = ?) AS returns_today,
		  (SELECT COUNT(*) FROM borrowings WHERE borrow_date BETWEEN ? AND ?) AS borrowings_this_month`

	var stats domain.DashboardStats
	if err := r.db.Get(&stats, query, today, today, monthStart, monthEnd); err != nil {
		r.logger.Error("Could not compute dashboard stats", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not compute dashboard stats: %w", err)
	}

	return &stats, nil
}

func (r *ReportRepository) PopularBooks(limit int) ([]*domain.BookLoanStats, error) {
	query := `
		SELECT b.id, b.title, b.author, b.isbn, b.description, b.cover_image, b.stock,
		       b.publication_year, b.publisher, b.category_id, b.created_at, b.updated_at,
		       COUNT(br.id) AS borrowings_count,
		       COALESCE(SUM(CASE WHEN br.status IN ('borrowed', 'overdue') THEN 1 ELSE 0 END), 0) AS active_borrowings_count
		FROM books b
		LEFT JOIN borrowings br ON br.book_id = b.id
		GROUP BY b.id
		ORDER BY borrowings_count DESC, b.id ASC
		LIMIT ?`

	books := make([]*domain.BookLoanStats, 0, limit)
	if err := r.db.Select(&books, query, limit); err != nil {
		r.logger.Error("Could not load popular books", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not load popular books: %w", err)
	}

	return books, nil
}

func (r *ReportRepository) RecentBooks(limit int) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC, id DESC LIMIT ?`

	books := make([]*domain.Book, 0, limit)
	if err := r.db.Select(&books, query, limit); err != nil {
		r.logger.Error("Could not load recent books", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not load recent books: %w", err)
	}

	return books, nil
}

func (r *ReportRepository) BorrowingsBetween(startDate, endDate string, status domain.LoanStatus) ([]*domain.Borrowing, error) {
	query := `SELECT ` + borrowingColumns + ` FROM borrowings WHERE borrow_date BETWEEN ? AND ?`
	args := []interface{}{startDate, endDate}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY borrow_date ASC, id ASC`

	borrowings := make([]*domain.Borrowing, 0)
	if err := r.db.Select(&borrowings, query, args...); err != nil {
		r.logger.Error("Could not load borrowings for period", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not load borrowings for period: %w", err)
	}

	if err := attachBorrowingRelations(r.db, borrowings); err != nil {
		return nil, err
	}

	return borrowings, nil
}

func (r *ReportRepository) UserLoanStats(userID int64) ([]*domain.UserLoanStats, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.phone_number, u.address,
		       u.created_at, u.updated_at,
		       COUNT(br.id) AS borrowings_count,
		       COALESCE(SUM(CASE WHEN br.status IN ('borrowed', 'overdue') THEN 1 ELSE 0 END), 0) AS active_borrowings_count,
		       COALESCE(SUM(CASE WHEN br.status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_borrowings_count
		FROM users u
		LEFT JOIN borrowings br ON br.user_id = u.id
		WHERE u.role = 'member'`
	args := []interface{}{}
	if userID != 0 {
		query += ` AND u.id = ?`
		args = append(args, userID)
	}
	query += ` GROUP BY u.id ORDER BY u.id ASC`

	users := make([]*domain.UserLoanStats, 0)
	if err := r.db.Select(&users, query, args...); err != nil {
		r.logger.Error("Could not compute user loan stats", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not compute user loan stats: %w", err)
	}

	return users, nil
}

func (r *ReportRepository) BookLoanStats(categoryID int64) ([]*domain.BookLoanStats, error) {
	query := `
		SELECT b.id, b.title, b.author, b.isbn, b.description, b.cover_image, b.stock,
		       b.publication_year, b.publisher, b.category_id, b.created_at, b.updated_at,
		       COUNT(br.id) AS borrowings_count,
		       COALESCE(SUM(CASE WHEN br.status IN ('borrowed', 'overdue') THEN 1 ELSE 0 END), 0) AS active_borrowings_count
		FROM books b
		LEFT JOIN borrowings br ON br.book_id = b.id`
	args := []interface{}{}
	if categoryID != 0 {
		query += ` WHERE b.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` GROUP BY b.id ORDER BY b.id ASC`

	books := make([]*domain.BookLoanStats, 0)
	if err := r.db.Select(&books, query, args...); err != nil {
		r.logger.Error("Could not compute book loan stats", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("could not compute book loan stats: %w", err)
	}

	return books, nil
}

func (r *ReportRepository) MemberStats(userID int64, today, dueHorizon string) (*domain.MemberDashboard, error) {
	query := `
		SELECT
		  (SELECT COUNT(*) FROM borrowings WHERE user_id = ? AND return_date IS NULL) AS current_borrowings,
		  (SELECT COUNT(*) FROM borrowings WHERE user_id = ? AND return_date IS NULL AND due_date BETWEEN ? AND ?) AS due_soon,
		  (SELECT COUNT(*) FROM borrowings WHERE user_id = ?) AS total_borrowings`

	var stats domain.MemberDashboard
	if err := r.db.Get(&stats, query, userID, userID, today, dueHorizon, userID); err != nil {
		r.logger.Error("Could not compute member stats", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("could not compute member stats: %w", err)
	}

	return &stats, nil
}

func (r *ReportRepository) CurrentBorrowings(userID int64) ([]*domain.Borrowing, error) {
	query := `SELECT ` + borrowingColumns + ` FROM borrowings
		WHERE user_id = ? AND return_date IS NULL
		ORDER BY due_date ASC, id ASC`

	borrowings := make([]*domain.Borrowing, 0)
	if err := r.db.Select(&borrowings, query, userID); err != nil {
		r.logger.Error("Could not load current borrowings", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("could not load current borrowings: %w", err)
	}

	if err := attachBorrowingRelations(r.db, borrowings); err != nil {
		return nil, err
	}

	return borrowings, nil
}
