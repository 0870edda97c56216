package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libtrack/internal/modules/library/domain"
)

var borrowedAt = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func day(n int) time.Time { return borrowedAt.AddDate(0, 0, n) }

func Test_LoanStatusAt_Boundaries(t *testing.T) {
	t.Parallel()
	loan := domain.Loan{ID: "l-1", BorrowedAt: borrowedAt, DueAt: domain.DueDate(borrowedAt, 7)}

	assert.Equal(t, domain.LoanActive, domain.LoanStatusAt(loan, day(6)))
	assert.False(t, domain.IsOverdueAt(loan, day(6)))
	assert.Equal(t, domain.LoanActive, domain.LoanStatusAt(loan, day(7)), "due instant itself is not overdue")
	assert.Equal(t, domain.LoanOverdue, domain.LoanStatusAt(loan, day(8)))
	assert.True(t, domain.IsOverdueAt(loan, day(8)))

	loan.ReturnedAt = day(20)
	assert.Equal(t, domain.LoanReturned, domain.LoanStatusAt(loan, day(30)))
	assert.False(t, domain.IsOverdueAt(loan, day(30)))
}

func Test_IsOverdueAt_WithoutDueDate(t *testing.T) {
	t.Parallel()
	legacy := domain.Loan{ID: "l-1", BorrowedAt: borrowedAt}
	assert.False(t, domain.IsOverdueAt(legacy, day(365)))
	assert.Equal(t, domain.LoanActive, domain.LoanStatusAt(legacy, day(365)))
}

func Test_LoanStatus_Label(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Active", domain.LoanActive.Label())
	assert.Equal(t, "Overdue", domain.LoanOverdue.Label())
	assert.Equal(t, "Returned", domain.LoanReturned.Label())
}

func Test_ActiveAndPastLoans_PartitionByMember(t *testing.T) {
	t.Parallel()
	snap := domain.NewSnapshot(domain.Dataset{
		Loans: []domain.Loan{
			{ID: "l-1", MemberID: "m-1", BorrowedAt: day(0), ReturnedAt: day(3)},
			{ID: "l-2", MemberID: "m-1", BorrowedAt: day(5)},
			{ID: "l-3", MemberID: "m-2", BorrowedAt: day(6)},
			{ID: "l-4", MemberID: "m-1", BorrowedAt: day(7)},
		},
	})

	active := domain.ActiveLoans(snap, "m-1")
	past := domain.PastLoans(snap, "m-1")
	require.Len(t, active, 2)
	require.Len(t, past, 1)
	assert.Equal(t, "l-4", active[0].ID)
	assert.Equal(t, "l-2", active[1].ID)
	assert.Equal(t, "l-1", past[0].ID)
	assert.Empty(t, domain.ActiveLoans(snap, "m-unknown"))
}

func Test_FilterBooks(t *testing.T) {
	t.Parallel()
	snap := domain.NewSnapshot(domain.Dataset{
		Books: []domain.Book{
			{ID: "b-1", Title: "It", Author: "Stephen King", CategoryID: "horror"},
			{ID: "b-2", Title: "The Witcher", Author: "Andrzej Sapkowski", CategoryID: "fantasy"},
			{ID: "b-3", Title: "Carrie", Author: "Stephen King", CategoryID: "horror"},
			{ID: "b-4", Title: "Die Straße", Author: "Ann Petry"},
		},
	})
	books := snap.Books()

	all := domain.FilterBooks(books, "", "")
	require.Len(t, all, 4)
	assert.Equal(t, []string{"b-3", "b-4", "b-1", "b-2"}, ids(all, func(b domain.Book) string { return b.ID }))

	horror := domain.FilterBooks(books, "horror", "")
	assert.Equal(t, []string{"b-3", "b-1"}, ids(horror, func(b domain.Book) string { return b.ID }))

	king := domain.FilterBooks(books, "", "  KING ")
	assert.Len(t, king, 2)

	folded := domain.FilterBooks(books, "", "STRASSE")
	require.Len(t, folded, 1)
	assert.Equal(t, "b-4", folded[0].ID)

	assert.Empty(t, domain.FilterBooks(books, "fantasy", "king"))
	assert.Equal(t, "It", books[2].Title, "input must not be reordered")
}

func Test_FilterLoans(t *testing.T) {
	t.Parallel()
	now := day(10)
	loans := []domain.Loan{
		{ID: "open", BorrowedAt: day(5), DueAt: day(19)},
		{ID: "late", BorrowedAt: day(0), DueAt: day(7)},
		{ID: "done", BorrowedAt: day(0), DueAt: day(7), ReturnedAt: day(8)},
	}
	cases := map[string][]string{
		"":         {"open", "late", "done"},
		"all":      {"open", "late", "done"},
		"active":   {"open", "late"},
		"returned": {"done"},
		"OVERDUE":  {"late"},
	}
	for raw, want := range cases {
		filter, err := domain.ParseLoanFilter(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, ids(domain.FilterLoans(loans, filter, now), func(l domain.Loan) string { return l.ID }), raw)
	}
	_, err := domain.ParseLoanFilter("lost")
	assert.Error(t, err)
}

func Test_AvailableBooks(t *testing.T) {
	t.Parallel()
	books := []domain.Book{{ID: "a", IsAvailable: true}, {ID: "b"}, {ID: "c", IsAvailable: true}}
	assert.Equal(t, []string{"a", "c"}, ids(domain.AvailableBooks(books), func(b domain.Book) string { return b.ID }))
}

func Test_DescribeLoan_ResolvesReferences(t *testing.T) {
	t.Parallel()
	snap := domain.NewSnapshot(domain.Dataset{
		Books:   []domain.Book{{ID: "b-1", Title: "It", Author: "Stephen King"}},
		Members: []domain.Member{{ID: "m-1", Name: "Noah D.", Email: "noah@example.com"}},
	})
	late := domain.Loan{ID: "l-1", BookID: "b-1", MemberID: "m-1", BorrowedAt: day(0), DueAt: day(7)}

	view := domain.DescribeLoan(snap, late, day(9).Add(time.Hour))
	assert.Equal(t, "It", view.BookTitle)
	assert.Equal(t, "Noah D.", view.MemberName)
	assert.Equal(t, domain.LoanOverdue, view.Status)
	assert.Equal(t, 3, view.DaysOverdue)

	dangling := domain.Loan{ID: "l-2", BookID: "gone", MemberID: "gone", BorrowedAt: day(0), DueAt: day(7)}
	view = domain.DescribeLoan(snap, dangling, day(1))
	assert.Equal(t, domain.UnknownBook, view.BookTitle)
	assert.Equal(t, domain.UnknownMember, view.MemberName)
	assert.Zero(t, view.DaysOverdue)
}

func Test_CategoryName_And_Summarize(t *testing.T) {
	t.Parallel()
	snap := domain.NewSnapshot(domain.Dataset{
		Categories: []domain.Category{{ID: "c-1", Name: "Horror"}},
		Books:      []domain.Book{{ID: "b-1", IsAvailable: false}, {ID: "b-2", IsAvailable: true}},
		Members:    []domain.Member{{ID: "m-1"}},
		Loans: []domain.Loan{
			{ID: "l-1", BookID: "b-1", BorrowedAt: day(0), DueAt: day(7)},
			{ID: "l-2", BookID: "b-2", BorrowedAt: day(0), DueAt: day(7), ReturnedAt: day(2)},
		},
	})
	assert.Equal(t, "Horror", domain.CategoryName(snap, "c-1"))
	assert.Equal(t, domain.Uncategorized, domain.CategoryName(snap, ""))
	assert.Equal(t, domain.Uncategorized, domain.CategoryName(snap, "gone"))

	stats := domain.Summarize(snap, day(8))
	assert.Equal(t, domain.Stats{Categories: 1, Books: 2, AvailableBooks: 1, Members: 1, OpenLoans: 1, OverdueLoans: 1}, stats)
	assert.Contains(t, stats.String(), "1 overdue")
}
