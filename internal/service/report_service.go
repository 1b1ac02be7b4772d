package service

import (
	"fmt"
	"time"

	"shelftrack/internal/domain"
	"shelftrack/internal/validation"
	"shelftrack/pkg/logger"
)

const (
	popularBooksLimit = 5
	recentBooksLimit  = 5
	dueSoonDays       = 7
)

type ReportService struct {
	reports domain.ReportRepository
	logger  logger.Logger
}

func NewReportService(reports domain.ReportRepository, log logger.Logger) domain.ReportService {
	return &ReportService{
		reports: reports,
		logger:  log,
	}
}

func (s *ReportService) DashboardSummary() (*domain.DashboardSummary, error) {
	now := time.Now()
	today := now.Format(domain.DateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(domain.DateLayout)
	monthEnd := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Format(domain.DateLayout)

	stats, err := s.reports.DashboardStats(today, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("loading dashboard stats: %w", err)
	}
	popular, err := s.reports.PopularBooks(popularBooksLimit)
	if err != nil {
		return nil, fmt.Errorf("loading popular books: %w", err)
	}
	recent, err := s.reports.RecentBooks(recentBooksLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent books: %w", err)
	}

	return &domain.DashboardSummary{
		Stats:        *stats,
		PopularBooks: popular,
		RecentBooks:  recent,
	}, nil
}

func (s *ReportService) PeriodReport(startDate, endDate string, reportType domain.ReportType) (*domain.PeriodReport, error) {
	if reportType == "" {
		reportType = domain.ReportTypeAll
	}

	v := validation.New()
	v.Check(validation.IsDate(startDate), "start_date", "start date must be a valid date (YYYY-MM-DD)")
	v.Check(validation.IsDate(endDate), "end_date", "end date must be a valid date (YYYY-MM-DD)")
	v.Check(reportType == domain.ReportTypeBorrowed || reportType == domain.ReportTypeReturned || reportType == domain.ReportTypeAll,
		"type", "type must be borrowed, returned or all")
	if v.Valid() {
		v.Check(startDate <= endDate, "end_date", "end date must not be before the start date")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	var status domain.LoanStatus
	if reportType == domain.ReportTypeBorrowed {
		status = domain.LoanStatusBorrowed
	} else if reportType == domain.ReportTypeReturned {
		status = domain.LoanStatusReturned
	}

	borrowings, err := s.reports.BorrowingsBetween(startDate, endDate, status)
	if err != nil {
		return nil, fmt.Errorf("loading borrowings: %w", err)
	}

	summary := domain.PeriodSummary{Total: int64(len(borrowings))}
	for _, b := range borrowings {
		switch b.Status {
		case domain.LoanStatusReturned:
			summary.Returned++
		case domain.LoanStatusOverdue:
			summary.Overdue++
			summary.Active++
		case domain.LoanStatusBorrowed:
			summary.Active++
		}
	}

	return &domain.PeriodReport{
		Period:     domain.ReportPeriod{StartDate: startDate, EndDate: endDate},
		Borrowings: borrowings,
		Summary:    summary,
	}, nil
}

func (s *ReportService) UserReport(userID int64) (*domain.UserReport, error) {
	users, err := s.reports.UserLoanStats(userID)
	if err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}

	summary := domain.UserReportSummary{TotalUsers: int64(len(users))}
	for _, u := range users {
		if u.ActiveBorrowingsCount > 0 {
			summary.UsersWithActiveBorrowings++
		}
		if u.OverdueBorrowingsCount > 0 {
			summary.UsersWithOverdueBorrowings++
		}
	}

	return &domain.UserReport{Users: users, Summary: summary}, nil
}

func (s *ReportService) BookReport(categoryID int64) (*domain.BookReport, error) {
	books, err := s.reports.BookLoanStats(categoryID)
	if err != nil {
		return nil, fmt.Errorf("loading book stats: %w", err)
	}

	summary := domain.BookReportSummary{TotalBooks: int64(len(books))}
	for _, b := range books {
		if b.Stock > 0 {
			summary.AvailableBooks++
		} else {
			summary.UnavailableBooks++
		}
		summary.TotalBorrowedCount += b.BorrowingsCount
		if summary.MostBorrowed == nil || b.BorrowingsCount > summary.MostBorrowed.BorrowingsCount {
			summary.MostBorrowed = b
		}
	}
	if summary.MostBorrowed != nil && summary.MostBorrowed.BorrowingsCount == 0 {
		summary.MostBorrowed = nil
	}

	return &domain.BookReport{Books: books, Summary: summary}, nil
}

func (s *ReportService) MemberDashboard(actor *domain.User) (*domain.MemberDashboard, error) {
	now := time.Now()
	today := now.Format(domain.DateLayout)
	horizon := now.AddDate(0, 0, dueSoonDays).Format(domain.DateLayout)

	stats, err := s.reports.MemberStats(actor.ID, today, horizon)
	if err != nil {
		return nil, fmt.Errorf("loading member stats: %w", err)
	}
	return stats, nil
}

func (s *ReportService) CurrentBorrowings(actor *domain.User) ([]*domain.Borrowing, error) {
	return s.reports.CurrentBorrowings(actor.ID)
}
