package out

import (
	"context"
	"slices"

	libraryin "libtrack/internal/modules/library/port/in"
	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/modules/notify/domain"
	notifyout "libtrack/internal/modules/notify/port/out"
)

// LibraryLoanSource turns the library's overdue loans into reminders.
type LibraryLoanSource struct {
	library libraryin.Usecase
}

func NewLibraryLoanSource(library libraryin.Usecase) notifyout.LoanSource {
	return &LibraryLoanSource{library: library}
}

func (s *LibraryLoanSource) OverdueReminders(ctx context.Context) ([]domain.Reminder, error) {
	members, err := s.library.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m.ID] = struct{}{}
	}
	loans, err := s.library.ListLoans(ctx, librarydto.LoanQuery{Filter: "overdue"})
	if err != nil {
		return nil, err
	}
	reminders := make([]domain.Reminder, 0, len(loans))
	for _, loan := range loans {
		// nobody left to remind
		if _, ok := known[loan.MemberID]; !ok {
			continue
		}
		reminders = append(reminders, domain.Reminder{
			LoanID:      loan.ID,
			BookTitle:   loan.BookTitle,
			MemberName:  loan.MemberName,
			MemberEmail: loan.MemberEmail,
			DueAt:       loan.DueAt,
			DaysOverdue: loan.DaysOverdue,
		})
	}
	// most overdue first
	slices.SortStableFunc(reminders, func(a, b domain.Reminder) int {
		return a.DueAt.Compare(b.DueAt)
	})
	return reminders, nil
}
