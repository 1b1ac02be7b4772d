package domain

type ReportType string

const (
	ReportTypeBorrowed ReportType = "borrowed"
	ReportTypeReturned ReportType = "returned"
	ReportTypeAll      ReportType = "all"
)

type DashboardStats struct {
	TotalBooks          int64 `db:"total_books" json:"total_books"`
	AvailableBooks      int64 `db:"available_books" json:"available_books"`
	TotalMembers        int64 `db:"total_members" json:"total_members"`
	ActiveBorrowings    int64 `db:"active_borrowings" json:"active_borrowings"`
	OverdueBorrowings   int64 `db:"overdue_borrowings" json:"overdue_borrowings"`
	BorrowingsToday     int64 `db:"borrowings_today" json:"borrowings_today"`
	ReturnsToday        int64 `db:"returns_today" json:"returns_today"`
	BorrowingsThisMonth int64 `db:"borrowings_this_month" json:"borrowings_this_month"`
}

type BookLoanStats struct {
	Book
	BorrowingsCount       int64 `db:"borrowings_count" json:"borrowings_count"`
	ActiveBorrowingsCount int64 `db:"active_borrowings_count" json:"active_borrowings_count"`
}

type UserLoanStats struct {
	User
	BorrowingsCount        int64 `db:"borrowings_count" json:"borrowings_count"`
	ActiveBorrowingsCount  int64 `db:"active_borrowings_count" json:"active_borrowings_count"`
	OverdueBorrowingsCount int64 `db:"overdue_borrowings_count" json:"overdue_borrowings_count"`
}

type DashboardSummary struct {
	Stats        DashboardStats   `json:"stats"`
	PopularBooks []*BookLoanStats `json:"popular_books"`
	RecentBooks  []*Book          `json:"recent_books"`
}

type ReportPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type PeriodSummary struct {
	Total    int64 `json:"total"`
	Returned int64 `json:"returned"`
	Active   int64 `json:"active"`
	Overdue  int64 `json:"overdue"`
}

type PeriodReport struct {
	Period     ReportPeriod  `json:"period"`
	Borrowings []*Borrowing  `json:"borrowings"`
	Summary    PeriodSummary `json:"summary"`
}

type UserReportSummary struct {
	TotalUsers                 int64 `json:"total_users"`
	UsersWithActiveBorrowings  int64 `json:"users_with_active_borrowings"`
	UsersWithOverdueBorrowings int64 `json:"users_with_overdue_borrowings"`
}

type UserReport struct {
	Users   []*UserLoanStats  `json:"users"`
	Summary UserReportSummary `json:"summary"`
}

type BookReportSummary struct {
	TotalBooks         int64          `json:"total_books"`
	AvailableBooks     int64          `json:"available_books"`
	UnavailableBooks   int64          `json:"unavailable_books"`
	MostBorrowed       *BookLoanStats `json:"most_borrowed"`
	TotalBorrowedCount int64          `json:"total_borrowed_count"`
}

type BookReport struct {
	Books   []*BookLoanStats  `json:"books"`
	Summary BookReportSummary `json:"summary"`
}

// MemberDashboard summarises the calling member's own loans.
type MemberDashboard struct {
	CurrentBorrowings int64 `db:"current_borrowings" json:"current_borrowings"`
	DueSoon           int64 `db:"due_soon" json:"due_soon"`
	TotalBorrowings   int64 `db:"total_borrowings" json:"total_borrowings"`
}

type ReportRepository interface {
	DashboardStats(today, monthStart, monthEnd string) (*DashboardStats, error)
	PopularBooks(limit int) ([]*BookLoanStats, error)
	RecentBooks(limit int) ([]*Book, error)
	BorrowingsBetween(startDate, endDate string, status LoanStatus) ([]*Borrowing, error)
	UserLoanStats(userID int64) ([]*UserLoanStats, error)
	BookLoanStats(categoryID int64) ([]*BookLoanStats, error)
	MemberStats(userID int64, today, dueHorizon string) (*MemberDashboard, error)
	CurrentBorrowings(userID int64) ([]*Borrowing, error)
}

type ReportService interface {
	DashboardSummary() (*DashboardSummary, error)
	PeriodReport(startDate, endDate string, reportType ReportType) (*PeriodReport, error)
	UserReport(userID int64) (*UserReport, error)
	BookReport(categoryID int64) (*BookReport, error)
	MemberDashboard(actor *User) (*MemberDashboard, error)
	CurrentBorrowings(actor *User) ([]*Borrowing, error)
}
