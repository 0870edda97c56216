package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const (
	UnknownMember = "Unknown Member"
	UnknownBook   = "Unknown Book"
	Uncategorized = "Uncategorized"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

func (s LoanStatus) Label() string {
	switch s {
	case LoanActive:
		return "Active"
	case LoanOverdue:
		return "Overdue"
	case LoanReturned:
		return "Returned"
	default:
		return string(s)
	}
}

// IsOverdueAt reports whether an open loan passed its due date before now.
// Loans without a due date are never overdue.
func IsOverdueAt(loan Loan, now time.Time) bool {
	if !loan.IsOpen() || !loan.HasDueDate() {
		return false
	}
	return loan.DueAt.Before(now)
}

func LoanStatusAt(loan Loan, now time.Time) LoanStatus {
	switch {
	case !loan.IsOpen():
		return LoanReturned
	case IsOverdueAt(loan, now):
		return LoanOverdue
	default:
		return LoanActive
	}
}

// ActiveLoans are the member's open loans in snapshot order.
func ActiveLoans(s Snapshot, memberID string) []Loan {
	return memberLoans(s, memberID, true)
}

// PastLoans are the member's returned loans in snapshot order.
func PastLoans(s Snapshot, memberID string) []Loan {
	return memberLoans(s, memberID, false)
}

func memberLoans(s Snapshot, memberID string, open bool) []Loan {
	out := make([]Loan, 0)
	for _, loan := range s.loans {
		if loan.MemberID == memberID && loan.IsOpen() == open {
			out = append(out, loan)
		}
	}
	return out
}

// FilterBooks keeps books in categoryID (when set) whose title or author
// contains search, compared under Unicode case folding. Input order is kept.
func FilterBooks(books []Book, categoryID, search string) []Book {
	categoryID = strings.TrimSpace(categoryID)
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))
	out := make([]Book, 0, len(books))
	for _, book := range books {
		if categoryID != "" && book.CategoryID != categoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(book.Title), needle) &&
			!strings.Contains(fold.String(book.Author), needle) {
			continue
		}
		out = append(out, book)
	}
	return out
}

// AvailableBooks are the books that can be lent right now.
func AvailableBooks(books []Book) []Book {
	out := make([]Book, 0, len(books))
	for _, book := range books {
		if book.IsAvailable {
			out = append(out, book)
		}
	}
	return out
}

type LoanFilter string

const (
	LoanFilterAll      LoanFilter = "all"
	LoanFilterActive   LoanFilter = "active"
	LoanFilterReturned LoanFilter = "returned"
	LoanFilterOverdue  LoanFilter = "overdue"
)

func ParseLoanFilter(raw string) (LoanFilter, error) {
	switch LoanFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", LoanFilterAll:
		return LoanFilterAll, nil
	case LoanFilterActive:
		return LoanFilterActive, nil
	case LoanFilterReturned:
		return LoanFilterReturned, nil
	case LoanFilterOverdue:
		return LoanFilterOverdue, nil
	default:
		return "", reject("unknown loan filter %q", raw)
	}
}

// FilterLoans narrows loans by filter. "active" means every open loan,
// overdue ones included.
func FilterLoans(loans []Loan, filter LoanFilter, now time.Time) []Loan {
	out := make([]Loan, 0, len(loans))
	for _, loan := range loans {
		switch filter {
		case LoanFilterActive:
			if !loan.IsOpen() {
				continue
			}
		case LoanFilterReturned:
			if loan.IsOpen() {
				continue
			}
		case LoanFilterOverdue:
			if !IsOverdueAt(loan, now) {
				continue
			}
		}
		out = append(out, loan)
	}
	return out
}

// LoanView is a loan with its references resolved for display.
type LoanView struct {
	Loan
	BookTitle   string
	BookAuthor  string
	MemberName  string
	MemberEmail string
	Status      LoanStatus
	DaysOverdue int
}

func DescribeLoan(s Snapshot, loan Loan, now time.Time) LoanView {
	view := LoanView{
		Loan:       loan,
		BookTitle:  UnknownBook,
		MemberName: UnknownMember,
		Status:     LoanStatusAt(loan, now),
	}
	if book, ok := s.Book(loan.BookID); ok {
		view.BookTitle = book.Title
		view.BookAuthor = book.Author
	}
	if member, ok := s.Member(loan.MemberID); ok {
		view.MemberName = member.Name
		view.MemberEmail = member.Email
	}
	if view.Status == LoanOverdue {
		view.DaysOverdue = DaysOverdue(loan, now)
	}
	return view
}

// DaysOverdue counts started days past the due date.
func DaysOverdue(loan Loan, now time.Time) int {
	if !IsOverdueAt(loan, now) {
		return 0
	}
	late := now.Sub(loan.DueAt)
	return int((late + 24*time.Hour - 1) / (24 * time.Hour))
}

func CategoryName(s Snapshot, categoryID string) string {
	if categoryID == "" {
		return Uncategorized
	}
	category, ok := s.Category(categoryID)
	if !ok {
		return Uncategorized
	}
	return category.Name
}

type Stats struct {
	Categories     int
	Books          int
	AvailableBooks int
	Members        int
	OpenLoans      int
	OverdueLoans   int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d books (%d available), %d members, %d open loans (%d overdue)",
		s.Books, s.AvailableBooks, s.Members, s.OpenLoans, s.OverdueLoans)
}

func Summarize(s Snapshot, now time.Time) Stats {
	stats := Stats{
		Categories:     len(s.categories),
		Books:          len(s.books),
		AvailableBooks: len(AvailableBooks(s.books)),
		Members:        len(s.members),
	}
	for _, loan := range s.loans {
		if loan.IsOpen() {
			stats.OpenLoans++
		}
		if IsOverdueAt(loan, now) {
			stats.OverdueLoans++
		}
	}
	return stats
}
