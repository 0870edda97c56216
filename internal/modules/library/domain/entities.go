package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "libtrack/internal/platform/errors"
)

const (
	DefaultDueDays = 14
)

// DuePresets are the loan periods offered when lending a book.
var DuePresets = []int{7, 14, 21, 30}

type Category struct {
	ID   string
	Name string
}

type Book struct {
	ID          string
	Title       string
	Author      string
	ISBN        string
	CategoryID  string
	AddedAt     time.Time
	IsAvailable bool
}

func (b Book) HasCategory() bool {
	return b.CategoryID != ""
}

type Member struct {
	ID       string
	Name     string
	Email    string
	JoinedAt time.Time
}

// Loan links a book to a member. A zero ReturnedAt means the loan is still
// open; a zero DueAt only appears on rows written without a due date.
type Loan struct {
	ID         string
	BookID     string
	MemberID   string
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt time.Time
}

func (l Loan) IsOpen() bool {
	return l.ReturnedAt.IsZero()
}

func (l Loan) HasDueDate() bool {
	return !l.DueAt.IsZero()
}

// Rejection is returned when input fails validation. It unwraps to
// apperrors.ErrInvalidInput.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func (r *Rejection) Unwrap() error {
	return apperrors.ErrInvalidInput
}

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// NormalizeISBN trims the value; blank input means no ISBN.
func NormalizeISBN(isbn string) string {
	return strings.TrimSpace(isbn)
}

// DueDate is borrowedAt advanced by dueDays calendar days.
func DueDate(borrowedAt time.Time, dueDays int) time.Time {
	return borrowedAt.AddDate(0, 0, dueDays)
}

func NewCategory(id, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, reject("category name is required")
	}
	return Category{ID: id, Name: name}, nil
}

func NewBook(id, title, author, isbn, categoryID string, addedAt time.Time) (Book, error) {
	book := Book{ID: id, AddedAt: addedAt, IsAvailable: true}
	if err := book.Revise(title, author, isbn, categoryID); err != nil {
		return Book{}, err
	}
	return book, nil
}

// Revise replaces the editable fields. Availability and AddedAt are untouched.
func (b *Book) Revise(title, author, isbn, categoryID string) error {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return reject("book title is required")
	}
	if author == "" {
		return reject("book author is required")
	}
	b.Title = title
	b.Author = author
	b.ISBN = NormalizeISBN(isbn)
	b.CategoryID = strings.TrimSpace(categoryID)
	return nil
}

func NewMember(id, name, email string, joinedAt time.Time) (Member, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Member{}, reject("member name is required")
	}
	if email == "" {
		return Member{}, reject("member email is required")
	}
	return Member{ID: id, Name: name, Email: email, JoinedAt: joinedAt}, nil
}

func NewLoan(id string, book Book, member Member, borrowedAt time.Time, dueDays int) (Loan, error) {
	if dueDays < 1 {
		return Loan{}, reject("due days must be at least 1, got %d", dueDays)
	}
	if !book.IsAvailable {
		return Loan{}, reject("book %q is not available", book.Title)
	}
	return Loan{
		ID:         id,
		BookID:     book.ID,
		MemberID:   member.ID,
		BorrowedAt: borrowedAt,
		DueAt:      DueDate(borrowedAt, dueDays),
	}, nil
}
