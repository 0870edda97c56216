package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Snapshot is an immutable, ordered view of the whole library. Books are
// ordered by title, categories and members by name, loans newest first.
type Snapshot struct {
	categories []Category
	books      []Book
	members    []Member
	loans      []Loan

	categoryIdx map[string]int
	bookIdx     map[string]int
	memberIdx   map[string]int
	loanIdx     map[string]int
}

func NewSnapshot(d Dataset) Snapshot {
	col := collate.New(language.Und, collate.IgnoreCase)
	byText := func(a, b, idA, idB string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		if c := strings.Compare(a, b); c != 0 {
			return c
		}
		return strings.Compare(idA, idB)
	}

	s := Snapshot{
		categories: slices.Clone(d.Categories),
		books:      slices.Clone(d.Books),
		members:    slices.Clone(d.Members),
		loans:      slices.Clone(d.Loans),
	}
	slices.SortFunc(s.categories, func(a, b Category) int { return byText(a.Name, b.Name, a.ID, b.ID) })
	slices.SortFunc(s.books, func(a, b Book) int { return byText(a.Title, b.Title, a.ID, b.ID) })
	slices.SortFunc(s.members, func(a, b Member) int { return byText(a.Name, b.Name, a.ID, b.ID) })
	slices.SortFunc(s.loans, func(a, b Loan) int {
		if c := b.BorrowedAt.Compare(a.BorrowedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	s.categoryIdx = index(s.categories, func(c Category) string { return c.ID })
	s.bookIdx = index(s.books, func(b Book) string { return b.ID })
	s.memberIdx = index(s.members, func(m Member) string { return m.ID })
	s.loanIdx = index(s.loans, func(l Loan) string { return l.ID })
	return s
}

func index[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int, len(items))
	for i, item := range items {
		out[key(item)] = i
	}
	return out
}

func (s Snapshot) Categories() []Category { return slices.Clone(s.categories) }
func (s Snapshot) Books() []Book          { return slices.Clone(s.books) }
func (s Snapshot) Members() []Member      { return slices.Clone(s.members) }
func (s Snapshot) Loans() []Loan          { return slices.Clone(s.loans) }

func (s Snapshot) Category(id string) (Category, bool) {
	idx, ok := s.categoryIdx[id]
	if !ok {
		return Category{}, false
	}
	return s.categories[idx], true
}

func (s Snapshot) Book(id string) (Book, bool) {
	idx, ok := s.bookIdx[id]
	if !ok {
		return Book{}, false
	}
	return s.books[idx], true
}

func (s Snapshot) Member(id string) (Member, bool) {
	idx, ok := s.memberIdx[id]
	if !ok {
		return Member{}, false
	}
	return s.members[idx], true
}

func (s Snapshot) Loan(id string) (Loan, bool) {
	idx, ok := s.loanIdx[id]
	if !ok {
		return Loan{}, false
	}
	return s.loans[idx], true
}

// LoansForBook returns every loan of the book, newest first.
func (s Snapshot) LoansForBook(bookID string) []Loan {
	out := make([]Loan, 0)
	for _, loan := range s.loans {
		if loan.BookID == bookID {
			out = append(out, loan)
		}
	}
	return out
}

func (s Snapshot) OpenLoanForBook(bookID string) (Loan, bool) {
	for _, loan := range s.loans {
		if loan.BookID == bookID && loan.IsOpen() {
			return loan, true
		}
	}
	return Loan{}, false
}

func (s Snapshot) BooksInCategory(categoryID string) []Book {
	out := make([]Book, 0)
	for _, book := range s.books {
		if book.CategoryID == categoryID {
			out = append(out, book)
		}
	}
	return out
}

// Dataset copies the snapshot content back out in snapshot order.
func (s Snapshot) Dataset() Dataset {
	return Dataset{
		Categories: s.Categories(),
		Books:      s.Books(),
		Members:    s.Members(),
		Loans:      s.Loans(),
	}
}
