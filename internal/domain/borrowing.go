package domain

import "time"

type LoanStatus string

const (
	LoanStatusBorrowed LoanStatus = "borrowed"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
)

// DateLayout is the wire and storage format for loan dates. Dates are kept
// as ISO strings so lexical comparison matches chronological order.
const DateLayout = "2006-01-02"

type Borrowing struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	BookID     int64      `db:"book_id" json:"book_id"`
	BorrowDate string     `db:"borrow_date" json:"borrow_date"`
	DueDate    string     `db:"due_date" json:"due_date"`
	ReturnDate *string    `db:"return_date" json:"return_date"`
	Status     LoanStatus `db:"status" json:"status"`
	Notes      *string    `db:"notes" json:"notes"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	// Loaded by explicit joins.
	User *User `db:"-" json:"user,omitempty"`
	Book *Book `db:"-" json:"book,omitempty"`
}

func (b *Borrowing) Active() bool {
	return b.Status == LoanStatusBorrowed || b.Status == LoanStatusOverdue
}

// BorrowingFilter narrows a loan listing. Search matches borrower name or
// book title, case-insensitive.
type BorrowingFilter struct {
	Status  LoanStatus
	UserID  int64
	Search  string
	Page    int
	PerPage int
}

type BorrowingRepository interface {
	FindByID(id int64) (*Borrowing, error)
	List(filter BorrowingFilter) ([]*Borrowing, int64, error)
	// CreateWithStockDecrement inserts the loan and decrements the book's
	// stock in one transaction. Returns ErrOutOfStock when the guarded
	// decrement affects no row.
	CreateWithStockDecrement(b *Borrowing) error
	// ReturnWithStockIncrement closes the loan and increments stock in one
	// transaction. Returns ErrAlreadyReturned when the loan is terminal.
	ReturnWithStockIncrement(id int64, returnDate string) error
	ExtendDueDate(id int64, newDueDate string, notes string) error
	// MarkOverdue flips every borrowed loan with due_date < today to
	// overdue and reports how many rows changed.
	MarkOverdue(today string) (int64, error)
	CountActiveByUser(userID int64) (int64, error)
}

type CreateLoanInput struct {
	BookID     int64
	BorrowDate string
	DueDate    string
	Notes      *string
}

// AdminLoanInput creates a loan on behalf of a member, resolving the member
// by email and the book by ISBN.
type AdminLoanInput struct {
	MemberEmail string
	BookISBN    string
	BorrowDate  string
	DueDate     string
	Notes       *string
}

type LoanService interface {
	CreateLoan(actor *User, input CreateLoanInput) (*Borrowing, error)
	CreateLoanForMember(actor *User, input AdminLoanInput) (*Borrowing, error)
	ReturnLoan(actor *User, id int64) (*Borrowing, error)
	ExtendLoan(actor *User, id int64, newDueDate string) (*Borrowing, error)
	MarkOverdue(actor *User) (int64, error)
	ListLoans(actor *User, filter BorrowingFilter) ([]*Borrowing, int64, error)
	GetLoan(actor *User, id int64) (*Borrowing, error)
}
