package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/internal/domain"
)

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Popular", uniqueISBN(40), 2)

	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	summary, err := env.reports.DashboardSummary()
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.Stats.TotalBooks)
	assert.Equal(t, int64(1), summary.Stats.TotalMembers)
	assert.Equal(t, int64(1), summary.Stats.ActiveBorrowings)
	assert.Equal(t, int64(1), summary.Stats.BorrowingsToday)
	assert.Equal(t, int64(1), summary.Stats.BorrowingsThisMonth)
	require.NotEmpty(t, summary.PopularBooks)
	assert.Equal(t, book.ID, summary.PopularBooks[0].ID)
	assert.NotEmpty(t, summary.RecentBooks)
}

func TestPeriodReportSummary(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	member := env.createMember(t, "m1@shelftrack.test")
	book := env.createBook(t, "Periodic", uniqueISBN(41), 3)

	first, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	_, err = env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(14),
	})
	require.NoError(t, err)

	_, err = env.loans.ReturnLoan(admin, first.ID)
	require.NoError(t, err)

	report, err := env.reports.PeriodReport(daysFromNow(-1), daysFromNow(1), domain.ReportTypeAll)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Summary.Total)
	assert.Equal(t, int64(1), report.Summary.Returned)
	assert.Equal(t, int64(1), report.Summary.Active)

	returnedOnly, err := env.reports.PeriodReport(daysFromNow(-1), daysFromNow(1), domain.ReportTypeReturned)
	require.NoError(t, err)
	assert.Equal(t, int64(1), returnedOnly.Summary.Total)

	_, err = env.reports.PeriodReport("bad", daysFromNow(1), domain.ReportTypeAll)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = env.reports.PeriodReport(daysFromNow(1), daysFromNow(-1), domain.ReportTypeAll)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUserReport(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	idle := env.createMember(t, "idle@shelftrack.test")
	book := env.createBook(t, "Read Often", uniqueISBN(42), 1)

	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	report, err := env.reports.UserReport(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Summary.TotalUsers)
	assert.Equal(t, int64(1), report.Summary.UsersWithActiveBorrowings)

	single, err := env.reports.UserReport(idle.ID)
	require.NoError(t, err)
	require.Len(t, single.Users, 1)
	assert.Equal(t, int64(0), single.Users[0].BorrowingsCount)
}

func TestBookReport(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	borrowed := env.createBook(t, "Borrowed Once", uniqueISBN(43), 1)
	env.createBook(t, "Untouched", uniqueISBN(44), 2)

	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     borrowed.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(7),
	})
	require.NoError(t, err)

	report, err := env.reports.BookReport(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Summary.TotalBooks)
	assert.Equal(t, int64(1), report.Summary.UnavailableBooks)
	assert.Equal(t, int64(1), report.Summary.TotalBorrowedCount)
	require.NotNil(t, report.Summary.MostBorrowed)
	assert.Equal(t, borrowed.ID, report.Summary.MostBorrowed.ID)

	scoped, err := env.reports.BookReport(borrowed.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scoped.Summary.TotalBooks)
}

func TestMemberDashboard(t *testing.T) {
	env := newTestEnv(t)
	member := env.createMember(t, "m1@shelftrack.test")
	other := env.createMember(t, "m2@shelftrack.test")
	book := env.createBook(t, "Mine", uniqueISBN(45), 4)
	second := env.createBook(t, "Later", uniqueISBN(46), 2)
	third := env.createBook(t, "Soonish", uniqueISBN(47), 2)

	// Due in 2 and 5 days: both inside the 7-day due-soon window.
	_, err := env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(2),
	})
	require.NoError(t, err)

	_, err = env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     third.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(5),
	})
	require.NoError(t, err)

	// Due in 10 days: current, but not due soon.
	_, err = env.loans.CreateLoan(member, domain.CreateLoanInput{
		BookID:     second.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(10),
	})
	require.NoError(t, err)

	_, err = env.loans.CreateLoan(other, domain.CreateLoanInput{
		BookID:     book.ID,
		BorrowDate: daysFromNow(0),
		DueDate:    daysFromNow(30),
	})
	require.NoError(t, err)

	stats, err := env.reports.MemberDashboard(member)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.CurrentBorrowings)
	assert.Equal(t, int64(2), stats.DueSoon)
	assert.Equal(t, int64(3), stats.TotalBorrowings)

	current, err := env.reports.CurrentBorrowings(member)
	require.NoError(t, err)
	require.Len(t, current, 3)
	for _, b := range current {
		assert.Equal(t, member.ID, b.UserID)
	}
}
