package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/internal/domain"
)

func TestCreateLoanDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "The Go Programming Language", uniqueISBN(1), 3)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(14),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, member.ID, loan.UserID)
	require.NotNil(t, loan.Book)
	assert.Equal(t, book.Title, loan.Book.Title)

	stored, err := env.books.FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)
}

func TestCreateLoanLastCopyBlocksNextMember(t *testing.T) {
	env := newTestEnv(t)
	m1 := env.createMember(t, "m1@shelftrack.test")
	m2 := env.createMember(t, "m2@shelftrack.test")
	book := env.createBook(t, "Single Copy", uniqueISBN(2), 1)

	_, err := env.loans.CreateLoan(m1, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	_, err = env.loans.CreateLoan(m2, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	stored, err := env.books.FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
}

func TestCreateLoanValidatesDates(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Dated", uniqueISBN(3), 1)

	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(-1),
		DueDate:    daysFromNow(7),
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(3),
		DueDate:    daysFromNow(3),
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: "not-a-date",
		DueDate:    daysFromNow(7),
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCreateLoanUnknownBook(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")

	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     9999,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateLoanForMemberResolvesByEmailAndISBN(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Resolved", uniqueISBN(4), 2)

	loan, err := env.loans.CreateLoanForMember(admin, domain.AdminLoanInput{
		MemberEmail: member.Email,
		BookISBN:    book.ISBN,
		BorrowDate:  daysFromNow(0),
		DueDate:     daysFromNow(14),
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, loan.UserID)
	assert.Equal(t, book.ID, loan.BookID)

	_, err = env.loans.CreateLoanForMember(admin, domain.AdminLoanInput{
		MemberEmail: "nobody@shelftrack.test",
		BookISBN:    book.ISBN,
		BorrowDate:  daysFromNow(0),
		DueDate:     daysFromNow(14),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReturnLoanRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Returnable", uniqueISBN(5), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	returned, err := env.loans.ReturnLoan(admin, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, daysFromNow(0), *returned.ReturnDate)

	stored, err := env.books.FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
}

func TestReturnLoanRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Guarded", uniqueISBN(6), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	_, err = env.loans.ReturnLoan(member, loan.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestReturnedLoanIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Terminal", uniqueISBN(7), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	returned, err := env.loans.ReturnLoan(admin, loan.ID)
	require.NoError(t, err)

	// A second return must not touch the row or the stock again.
	_, err = env.loans.ReturnLoan(admin, loan.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = env.loans.ExtendLoan(member, loan.ID, daysFromNow(30))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	after, err := env.loans.GetLoan(admin, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, after.Status)
	assert.Equal(t, returned.DueDate, after.DueDate)
	assert.Equal(t, *returned.ReturnDate, *after.ReturnDate)

	stored, err := env.books.FindByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
}

func TestExtendLoanMovesDueDateForward(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Extendable", uniqueISBN(8), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(10),
	})
	require.NoError(t, err)

	extended, err := env.loans.ExtendLoan(member, loan.ID, daysFromNow(20))
	require.NoError(t, err)
	assert.Equal(t, daysFromNow(20), extended.DueDate)
	require.NotNil(t, extended.Notes)
	assert.Contains(t, *extended.Notes, "Extended on")
}

func TestExtendLoanRejectsEarlierOrEqualDueDate(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Monotonic", uniqueISBN(9), 1)

	loan, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(10),
	})
	require.NoError(t, err)

	_, err = env.loans.ExtendLoan(member, loan.ID, daysFromNow(10))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = env.loans.ExtendLoan(member, loan.ID, daysFromNow(5))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestExtendLoanOwnership(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	m1 := env.createMember(t, "m1@shelftrack.test")
	m2 := env.createMember(t, "m2@shelftrack.test")
	book := env.createBook(t, "Owned", uniqueISBN(10), 2)

	loan, err := env.loans.CreateLoan(m1, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(10),
	})
	require.NoError(t, err)

	_, err = env.loans.ExtendLoan(m2, loan.ID, daysFromNow(20))
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	// Admins may extend on behalf of anyone.
	_, err = env.loans.ExtendLoan(admin, loan.ID, daysFromNow(20))
	assert.NoError(t, err)
}

func TestMarkOverdueIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Late", uniqueISBN(11), 1)

	// Inserted through the repository so the due date can sit in the past.
	loan := &domain.Borrowing{
		UserID:     member.ID,
		BookID:     book.ID,
		BorrowDate: "2024-01-01",
		DueDate:    "2024-01-10",
		Status:     domain.LoanStatusBorrowed,
	}
	require.NoError(t, env.borrowings.CreateWithStockDecrement(loan))

	count, err := env.loans.MarkOverdue(admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	flagged, err := env.loans.GetLoan(admin, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusOverdue, flagged.Status)

	count, err = env.loans.MarkOverdue(admin)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	again, err := env.loans.GetLoan(admin, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusOverdue, again.Status)
}

func TestListLoansScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	m1 := env.createMember(t, "m1@shelftrack.test")
	m2 := env.createMember(t, "m2@shelftrack.test")
	book := env.createBook(t, "Shared", uniqueISBN(12), 5)

	for _, m := range []*domain.User{m1, m2} {
		_, err := env.loans.CreateLoan(m, domain.CreateLoanInput{
			BookID:     book.ID,
			BorrowDate: daysFromNow(0),
			DueDate:    daysFromNow(7),
		})
		require.NoError(t, err)
	}

	all, total, err := env.loans.ListLoans(admin, domain.BorrowingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	// Members only ever see their own loans, even with a user_id filter.
	own, total, err := env.loans.ListLoans(m1, domain.BorrowingFilter{UserID: m2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, m1.ID, own[0].UserID)
}

func TestGetLoanOwnership(t *testing.T) {
	env := newTestEnv(t)
	m1 := env.createMember(t, "m1@shelftrack.test")
	m2 := env.createMember(t, "m2@shelftrack.test")
	book := env.createBook(t, "Private", uniqueISBN(13), 2)

	loan, err := env.loans.CreateLoan(m1, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	_, err = env.loans.GetLoan(m2, loan.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	got, err := env.loans.GetLoan(m1, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
}
