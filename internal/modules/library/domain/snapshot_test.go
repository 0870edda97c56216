package domain_test

import (
	"testing"
	"time"

	"libtrack/internal/modules/library/domain"
)

func TestSnapshotOrdering(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snap := domain.NewSnapshot(domain.Dataset{
		Categories: []domain.Category{{ID: "c-2", Name: "romance"}, {ID: "c-1", Name: "Fantasy"}},
		Books: []domain.Book{
			{ID: "b-3", Title: "the Witcher"},
			{ID: "b-1", Title: "It"},
			{ID: "b-2", Title: "Heated Rivalry"},
		},
		Members: []domain.Member{{ID: "m-2", Name: "Noah D."}, {ID: "m-1", Name: "Derrick M."}},
		Loans: []domain.Loan{
			{ID: "l-b", BorrowedAt: t0},
			{ID: "l-c", BorrowedAt: t0.Add(time.Hour)},
			{ID: "l-a", BorrowedAt: t0},
		},
	})

	assertIDs(t, "categories", ids(snap.Categories(), func(c domain.Category) string { return c.ID }), "c-1", "c-2")
	assertIDs(t, "books", ids(snap.Books(), func(b domain.Book) string { return b.ID }), "b-2", "b-1", "b-3")
	assertIDs(t, "members", ids(snap.Members(), func(m domain.Member) string { return m.ID }), "m-1", "m-2")
	assertIDs(t, "loans", ids(snap.Loans(), func(l domain.Loan) string { return l.ID }), "l-c", "l-a", "l-b")
}

func TestSnapshotLookupsAndIsolation(t *testing.T) {
	t.Parallel()
	snap := domain.NewSnapshot(domain.Dataset{
		Books: []domain.Book{{ID: "b-1", Title: "It", CategoryID: "c-1"}},
		Loans: []domain.Loan{
			{ID: "l-1", BookID: "b-1", ReturnedAt: time.Now()},
			{ID: "l-2", BookID: "b-1"},
		},
	})
	if _, ok := snap.Book("b-1"); !ok {
		t.Fatalf("expected b-1 lookup to succeed")
	}
	if _, ok := snap.Member("nobody"); ok {
		t.Fatalf("unknown member should not resolve")
	}
	if open, ok := snap.OpenLoanForBook("b-1"); !ok || open.ID != "l-2" {
		t.Fatalf("expected l-2 open loan, got %+v", open)
	}
	if len(snap.LoansForBook("b-1")) != 2 || len(snap.BooksInCategory("c-1")) != 1 {
		t.Fatalf("unexpected per-reference queries")
	}

	books := snap.Books()
	books[0].Title = "changed"
	again, _ := snap.Book("b-1")
	if again.Title != "It" {
		t.Fatalf("snapshot leaked internal slice")
	}

	var empty domain.Snapshot
	if _, ok := empty.Loan("l-1"); ok || len(empty.Books()) != 0 {
		t.Fatalf("zero snapshot should be empty")
	}
}

func ids[T any](items []T, key func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, key(item))
	}
	return out
}

func assertIDs(t *testing.T, what string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", what, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: expected %v, got %v", what, want, got)
		}
	}
}
