package usecase

import (
	"time"

	"libtrack/internal/modules/library/domain"
	"libtrack/internal/modules/library/dto"
)

func toMutation(outcome domain.Outcome, err error) (dto.MutationOutput, error) {
	if err != nil {
		return dto.MutationOutput{}, err
	}
	return dto.MutationOutput{Applied: outcome.Applied, ID: outcome.ID, Reason: outcome.Reason}, nil
}

func toBookOutput(snap domain.Snapshot, book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		ISBN:         book.ISBN,
		CategoryID:   book.CategoryID,
		CategoryName: domain.CategoryName(snap, book.CategoryID),
		AddedAt:      book.AddedAt,
		IsAvailable:  book.IsAvailable,
	}
}

func toMemberOutput(snap domain.Snapshot, member domain.Member) dto.MemberOutput {
	return dto.MemberOutput{
		ID:          member.ID,
		Name:        member.Name,
		Email:       member.Email,
		JoinedAt:    member.JoinedAt,
		ActiveLoans: len(domain.ActiveLoans(snap, member.ID)),
	}
}

func toLoanOutputs(snap domain.Snapshot, loans []domain.Loan, now time.Time) []dto.LoanOutput {
	out := make([]dto.LoanOutput, 0, len(loans))
	for _, loan := range loans {
		view := domain.DescribeLoan(snap, loan, now)
		out = append(out, dto.LoanOutput{
			ID:          loan.ID,
			BookID:      loan.BookID,
			BookTitle:   view.BookTitle,
			BookAuthor:  view.BookAuthor,
			MemberID:    loan.MemberID,
			MemberName:  view.MemberName,
			MemberEmail: view.MemberEmail,
			BorrowedAt:  loan.BorrowedAt,
			DueAt:       loan.DueAt,
			ReturnedAt:  loan.ReturnedAt,
			Status:      string(view.Status),
			StatusLabel: view.Status.Label(),
			DaysOverdue: view.DaysOverdue,
		})
	}
	return out
}

func toStatsOutput(stats domain.Stats) dto.StatsOutput {
	return dto.StatsOutput{
		Categories:     stats.Categories,
		Books:          stats.Books,
		AvailableBooks: stats.AvailableBooks,
		Members:        stats.Members,
		OpenLoans:      stats.OpenLoans,
		OverdueLoans:   stats.OverdueLoans,
		Summary:        stats.String(),
	}
}

func toSnapshotOutput(snap domain.Snapshot) dto.SnapshotOutput {
	out := dto.SnapshotOutput{}
	for _, category := range snap.Categories() {
		out.Categories = append(out.Categories, dto.CategoryRecord{ID: category.ID, Name: category.Name})
	}
	for _, book := range snap.Books() {
		out.Books = append(out.Books, dto.BookRecord{
			ID:          book.ID,
			Title:       book.Title,
			Author:      book.Author,
			ISBN:        book.ISBN,
			CategoryID:  book.CategoryID,
			AddedAt:     book.AddedAt,
			IsAvailable: book.IsAvailable,
		})
	}
	for _, member := range snap.Members() {
		out.Members = append(out.Members, dto.MemberRecord{ID: member.ID, Name: member.Name, Email: member.Email, JoinedAt: member.JoinedAt})
	}
	for _, loan := range snap.Loans() {
		out.Loans = append(out.Loans, dto.LoanRecord{
			ID:         loan.ID,
			BookID:     loan.BookID,
			MemberID:   loan.MemberID,
			BorrowedAt: loan.BorrowedAt,
			DueAt:      optionalTime(loan.DueAt),
			ReturnedAt: optionalTime(loan.ReturnedAt),
		})
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
