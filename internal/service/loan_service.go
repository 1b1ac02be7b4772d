package service

import (
	"errors"
	"fmt"
	"time"

	"shelftrack/internal/domain"
	"shelftrack/internal/validation"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/metrics"
)

type LoanService struct {
	borrowings domain.BorrowingRepository
	books      domain.BookRepository
	users      domain.UserRepository
	audit      domain.AuditLogService
	logger     logger.Logger
}

func NewLoanService(borrowings domain.BorrowingRepository, books domain.BookRepository, users domain.UserRepository, audit domain.AuditLogService, log logger.Logger) domain.LoanService {
	return &LoanService{
		borrowings: borrowings,
		books:      books,
		users:      users,
		audit:      audit,
		logger:     log,
	}
}

func (s *LoanService) CreateLoan(actor *domain.User, input domain.CreateLoanInput) (*domain.Borrowing, error) {
	if err := s.checkLoanDates(input.BorrowDate, input.DueDate); err != nil {
		return nil, err
	}

	book, err := s.books.FindByID(input.BookID)
	if err != nil {
		return nil, fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return nil, &domain.NotFoundError{Resource: "book"}
	}

	return s.createLoan(actor.ID, book, input.BorrowDate, input.DueDate, input.Notes)
}

func (s *LoanService) CreateLoanForMember(actor *domain.User, input domain.AdminLoanInput) (*domain.Borrowing, error) {
	if err := s.checkLoanDates(input.BorrowDate, input.DueDate); err != nil {
		return nil, err
	}

	member, err := s.users.FindByEmail(input.MemberEmail)
	if err != nil {
		return nil, fmt.Errorf("looking up member: %w", err)
	}
	if member == nil {
		return nil, &domain.NotFoundError{Resource: "member"}
	}

	book, err := s.books.FindByISBN(input.BookISBN)
	if err != nil {
		return nil, fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return nil, &domain.NotFoundError{Resource: "book"}
	}

	return s.createLoan(member.ID, book, input.BorrowDate, input.DueDate, input.Notes)
}

func (s *LoanService) createLoan(userID int64, book *domain.Book, borrowDate, dueDate string, notes *string) (*domain.Borrowing, error) {
	loan := &domain.Borrowing{
		UserID:     userID,
		BookID:     book.ID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Status:     domain.LoanStatusBorrowed,
		Notes:      notes,
	}

	if err := s.borrowings.CreateWithStockDecrement(loan); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.RecordLoanOperation("create", "rejected")
		}
		return nil, err
	}
	metrics.RecordLoanOperation("create", "success")

	s.audit.Record(domain.EntityTypeBorrowing, loan.ID, domain.ActionTypeCreate, fmt.Sprintf("borrowed %q until %s", book.Title, dueDate))

	s.logger.Info("Loan created", map[string]interface{}{
		"borrowing_id": loan.ID,
		"user_id":      userID,
		"book_id":      book.ID,
	})

	return s.borrowings.FindByID(loan.ID)
}

func (s *LoanService) ReturnLoan(actor *domain.User, id int64) (*domain.Borrowing, error) {
	if !actor.IsAdmin() {
		return nil, &domain.ForbiddenError{Reason: "only administrators can process returns"}
	}

	loan, err := s.borrowings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up borrowing: %w", err)
	}
	if loan == nil {
		return nil, &domain.NotFoundError{Resource: "borrowing"}
	}

	returnDate := time.Now().Format(domain.DateLayout)
	if err := s.borrowings.ReturnWithStockIncrement(id, returnDate); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.RecordLoanOperation("return", "rejected")
		}
		return nil, err
	}
	metrics.RecordLoanOperation("return", "success")

	s.audit.Record(domain.EntityTypeBorrowing, id, domain.ActionTypeReturn, fmt.Sprintf("returned on %s", returnDate))

	return s.borrowings.FindByID(id)
}

func (s *LoanService) ExtendLoan(actor *domain.User, id int64, newDueDate string) (*domain.Borrowing, error) {
	v := validation.New()
	v.Check(validation.IsDate(newDueDate), "new_due_date", "new due date must be a valid date (YYYY-MM-DD)")
	if !v.Valid() {
		return nil, v.Err()
	}

	loan, err := s.borrowings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up borrowing: %w", err)
	}
	if loan == nil {
		return nil, &domain.NotFoundError{Resource: "borrowing"}
	}
	if !actor.IsAdmin() && loan.UserID != actor.ID {
		return nil, &domain.ForbiddenError{Reason: "you can only extend your own borrowings"}
	}
	if loan.Status == domain.LoanStatusReturned {
		return nil, domain.ErrAlreadyReturned
	}

	// ISO strings compare lexically in date order.
	v.Check(newDueDate > loan.DueDate, "new_due_date", "new due date must be after the current due date")
	if !v.Valid() {
		return nil, v.Err()
	}

	note := fmt.Sprintf("Extended on %s", time.Now().Format(domain.DateLayout))
	if loan.Notes != nil && *loan.Notes != "" {
		note = *loan.Notes + "\n" + note
	}

	if err := s.borrowings.ExtendDueDate(id, newDueDate, note); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.RecordLoanOperation("extend", "rejected")
		}
		return nil, err
	}
	metrics.RecordLoanOperation("extend", "success")

	s.audit.Record(domain.EntityTypeBorrowing, id, domain.ActionTypeExtend, fmt.Sprintf("due date moved to %s", newDueDate))

	return s.borrowings.FindByID(id)
}

func (s *LoanService) MarkOverdue(actor *domain.User) (int64, error) {
	today := time.Now().Format(domain.DateLayout)
	count, err := s.borrowings.MarkOverdue(today)
	if err != nil {
		return 0, fmt.Errorf("flagging overdue borrowings: %w", err)
	}
	metrics.RecordOverdueFlagged(count)

	s.logger.Info("Overdue check completed", map[string]interface{}{
		"flagged": count,
		"run_by":  actor.ID,
	})

	return count, nil
}

func (s *LoanService) ListLoans(actor *domain.User, filter domain.BorrowingFilter) ([]*domain.Borrowing, int64, error) {
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
		filter.Search = ""
	}
	return s.borrowings.List(filter)
}

func (s *LoanService) GetLoan(actor *domain.User, id int64) (*domain.Borrowing, error) {
	loan, err := s.borrowings.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("looking up borrowing: %w", err)
	}
	if loan == nil {
		return nil, &domain.NotFoundError{Resource: "borrowing"}
	}
	if !actor.IsAdmin() && loan.UserID != actor.ID {
		return nil, &domain.ForbiddenError{Reason: "you can only view your own borrowings"}
	}
	return loan, nil
}

func (s *LoanService) checkLoanDates(borrowDate, dueDate string) error {
	today := time.Now().Format(domain.DateLayout)

	v := validation.New()
	v.Check(validation.IsDate(borrowDate), "borrow_date", "borrow date must be a valid date (YYYY-MM-DD)")
	v.Check(validation.IsDate(dueDate), "due_date", "due date must be a valid date (YYYY-MM-DD)")
	if v.Valid() {
		v.Check(borrowDate >= today, "borrow_date", "borrow date cannot be in the past")
		v.Check(dueDate > borrowDate, "due_date", "due date must be after the borrow date")
	}
	if !v.Valid() {
		return v.Err()
	}
	return nil
}
