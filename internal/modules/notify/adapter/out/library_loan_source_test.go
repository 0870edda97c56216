package out_test

import (
	"context"
	"testing"
	"time"

	librarydto "libtrack/internal/modules/library/dto"
	libraryin "libtrack/internal/modules/library/port/in"
	notifyout "libtrack/internal/modules/notify/adapter/out"
)

type fakeLibrary struct {
	libraryin.Usecase
	members []librarydto.MemberOutput
	loans   []librarydto.LoanOutput
	queries []librarydto.LoanQuery
}

func (f *fakeLibrary) ListMembers(context.Context) ([]librarydto.MemberOutput, error) {
	return f.members, nil
}

func (f *fakeLibrary) ListLoans(_ context.Context, query librarydto.LoanQuery) ([]librarydto.LoanOutput, error) {
	f.queries = append(f.queries, query)
	return f.loans, nil
}

func TestLibraryLoanSourceSkipsDeletedMembersAndSortsByDueDate(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	lib := &fakeLibrary{
		members: []librarydto.MemberOutput{{ID: "m1", Name: "Justin P."}, {ID: "m2", Name: "Noah D."}},
		loans: []librarydto.LoanOutput{
			{ID: "l1", MemberID: "m1", MemberName: "Justin P.", BookTitle: "It", DueAt: base.AddDate(0, 0, 5), DaysOverdue: 3},
			{ID: "l2", MemberID: "gone", MemberName: "Unknown member", BookTitle: "Heated Rivalry", DueAt: base, DaysOverdue: 8},
			{ID: "l3", MemberID: "m2", MemberName: "Noah D.", MemberEmail: "noah@example.com", BookTitle: "The Witcher", DueAt: base.AddDate(0, 0, 1), DaysOverdue: 7},
		},
	}
	reminders, err := notifyout.NewLibraryLoanSource(lib).OverdueReminders(context.Background())
	if err != nil {
		t.Fatalf("overdue reminders: %v", err)
	}
	if len(lib.queries) != 1 || lib.queries[0].Filter != "overdue" {
		t.Fatalf("expected a single overdue query, got %+v", lib.queries)
	}
	if len(reminders) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(reminders))
	}
	if reminders[0].LoanID != "l3" || reminders[1].LoanID != "l1" {
		t.Fatalf("unexpected order: %s, %s", reminders[0].LoanID, reminders[1].LoanID)
	}
	if reminders[0].MemberEmail != "noah@example.com" || reminders[0].DaysOverdue != 7 {
		t.Fatalf("unexpected reminder: %+v", reminders[0])
	}
}
