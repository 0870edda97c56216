package usecase

import (
	"context"
	"fmt"

	"libtrack/internal/modules/library/domain"
	"libtrack/internal/modules/library/dto"
	libraryin "libtrack/internal/modules/library/port/in"
	"libtrack/internal/modules/library/service"
	apperrors "libtrack/internal/platform/errors"
)

type Interactor struct {
	svc            *service.LibraryService
	defaultDueDays int
}

func NewInteractor(svc *service.LibraryService, defaultDueDays int) libraryin.Usecase {
	if defaultDueDays < 1 {
		defaultDueDays = domain.DefaultDueDays
	}
	return &Interactor{svc: svc, defaultDueDays: defaultDueDays}
}

func (i *Interactor) CreateCategory(ctx context.Context, input dto.CreateCategoryInput) (dto.MutationOutput, error) {
	return toMutation(i.svc.CreateCategory(ctx, input.Name))
}

func (i *Interactor) DeleteCategory(ctx context.Context, categoryID string) (dto.MutationOutput, error) {
	return toMutation(i.svc.DeleteCategory(ctx, categoryID))
}

func (i *Interactor) CreateBook(ctx context.Context, input dto.BookInput) (dto.MutationOutput, error) {
	return toMutation(i.svc.CreateBook(ctx, input.Title, input.Author, input.ISBN, input.CategoryID))
}

func (i *Interactor) UpdateBook(ctx context.Context, input dto.UpdateBookInput) (dto.MutationOutput, error) {
	return toMutation(i.svc.UpdateBook(ctx, input.BookID, input.Title, input.Author, input.ISBN, input.CategoryID))
}

func (i *Interactor) DeleteBook(ctx context.Context, bookID string) (dto.MutationOutput, error) {
	return toMutation(i.svc.DeleteBook(ctx, bookID))
}

func (i *Interactor) ImportPDF(ctx context.Context, input dto.ImportPDFInput) (dto.MutationOutput, error) {
	return toMutation(i.svc.ImportBookFromPDF(ctx, input.Path, input.CategoryID))
}

func (i *Interactor) CreateMember(ctx context.Context, input dto.CreateMemberInput) (dto.MutationOutput, error) {
	return toMutation(i.svc.CreateMember(ctx, input.Name, input.Email))
}

func (i *Interactor) DeleteMember(ctx context.Context, memberID string) (dto.MutationOutput, error) {
	return toMutation(i.svc.DeleteMember(ctx, memberID))
}

func (i *Interactor) BorrowBook(ctx context.Context, input dto.BorrowInput) (dto.MutationOutput, error) {
	days := input.DueDays
	if days == 0 {
		days = i.defaultDueDays
	}
	return toMutation(i.svc.BorrowBook(ctx, input.BookID, input.MemberID, days))
}

func (i *Interactor) ReturnBook(ctx context.Context, loanID string) (dto.MutationOutput, error) {
	return toMutation(i.svc.ReturnBook(ctx, loanID))
}

func (i *Interactor) Seed(ctx context.Context) (dto.MutationOutput, error) {
	return toMutation(i.svc.Seed(ctx, i.defaultDueDays))
}

func (i *Interactor) DefaultDueDays() int {
	return i.defaultDueDays
}

func (i *Interactor) ListCategories(_ context.Context) ([]dto.CategoryOutput, error) {
	snap := i.svc.Snapshot()
	categories := snap.Categories()
	out := make([]dto.CategoryOutput, 0, len(categories))
	for _, category := range categories {
		out = append(out, dto.CategoryOutput{
			ID:        category.ID,
			Name:      category.Name,
			BookCount: len(snap.BooksInCategory(category.ID)),
		})
	}
	return out, nil
}

func (i *Interactor) ListBooks(_ context.Context, query dto.BookQuery) ([]dto.BookOutput, error) {
	snap := i.svc.Snapshot()
	books := domain.FilterBooks(snap.Books(), query.CategoryID, query.Search)
	if query.AvailableOnly {
		books = domain.AvailableBooks(books)
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toBookOutput(snap, book))
	}
	return out, nil
}

func (i *Interactor) GetBook(_ context.Context, bookID string) (dto.BookOutput, error) {
	snap := i.svc.Snapshot()
	book, ok := snap.Book(bookID)
	if !ok {
		return dto.BookOutput{}, fmt.Errorf("book %q: %w", bookID, apperrors.ErrNotFound)
	}
	return toBookOutput(snap, book), nil
}

func (i *Interactor) ListMembers(_ context.Context) ([]dto.MemberOutput, error) {
	snap := i.svc.Snapshot()
	members := snap.Members()
	out := make([]dto.MemberOutput, 0, len(members))
	for _, member := range members {
		out = append(out, toMemberOutput(snap, member))
	}
	return out, nil
}

func (i *Interactor) GetMember(_ context.Context, memberID string) (dto.MemberDetailOutput, error) {
	snap := i.svc.Snapshot()
	member, ok := snap.Member(memberID)
	if !ok {
		return dto.MemberDetailOutput{}, fmt.Errorf("member %q: %w", memberID, apperrors.ErrNotFound)
	}
	now := i.svc.Now()
	return dto.MemberDetailOutput{
		MemberOutput: toMemberOutput(snap, member),
		Active:       toLoanOutputs(snap, domain.ActiveLoans(snap, memberID), now),
		Past:         toLoanOutputs(snap, domain.PastLoans(snap, memberID), now),
	}, nil
}

func (i *Interactor) ListLoans(_ context.Context, query dto.LoanQuery) ([]dto.LoanOutput, error) {
	filter, err := domain.ParseLoanFilter(query.Filter)
	if err != nil {
		return nil, err
	}
	snap := i.svc.Snapshot()
	now := i.svc.Now()
	loans := domain.FilterLoans(snap.Loans(), filter, now)
	if query.MemberID != "" {
		mine := loans[:0]
		for _, loan := range loans {
			if loan.MemberID == query.MemberID {
				mine = append(mine, loan)
			}
		}
		loans = mine
	}
	return toLoanOutputs(snap, loans, now), nil
}

func (i *Interactor) Stats(_ context.Context) (dto.StatsOutput, error) {
	return toStatsOutput(domain.Summarize(i.svc.Snapshot(), i.svc.Now())), nil
}

func (i *Interactor) Export(_ context.Context) (dto.SnapshotOutput, error) {
	return toSnapshotOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Subscribe(fn func(dto.ChangeEvent)) func() {
	return i.svc.Subscribe(func(snap domain.Snapshot) {
		fn(dto.ChangeEvent{Stats: toStatsOutput(domain.Summarize(snap, i.svc.Now()))})
	})
}
