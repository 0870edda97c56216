package in

import (
	"context"

	"libtrack/internal/modules/library/dto"
	libraryin "libtrack/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreateCategory(ctx context.Context, name string) (dto.MutationOutput, error) {
	return h.usecase.CreateCategory(ctx, dto.CreateCategoryInput{Name: name})
}

func (h CLIHandler) DeleteCategory(ctx context.Context, categoryID string) (dto.MutationOutput, error) {
	return h.usecase.DeleteCategory(ctx, categoryID)
}

func (h CLIHandler) ListCategories(ctx context.Context) ([]dto.CategoryOutput, error) {
	return h.usecase.ListCategories(ctx)
}

func (h CLIHandler) CreateBook(ctx context.Context, title, author, isbn, categoryID string) (dto.MutationOutput, error) {
	return h.usecase.CreateBook(ctx, dto.BookInput{Title: title, Author: author, ISBN: isbn, CategoryID: categoryID})
}

func (h CLIHandler) UpdateBook(ctx context.Context, bookID, title, author, isbn, categoryID string) (dto.MutationOutput, error) {
	return h.usecase.UpdateBook(ctx, dto.UpdateBookInput{
		BookID:    bookID,
		BookInput: dto.BookInput{Title: title, Author: author, ISBN: isbn, CategoryID: categoryID},
	})
}

func (h CLIHandler) DeleteBook(ctx context.Context, bookID string) (dto.MutationOutput, error) {
	return h.usecase.DeleteBook(ctx, bookID)
}

func (h CLIHandler) ImportPDF(ctx context.Context, path, categoryID string) (dto.MutationOutput, error) {
	return h.usecase.ImportPDF(ctx, dto.ImportPDFInput{Path: path, CategoryID: categoryID})
}

func (h CLIHandler) GetBook(ctx context.Context, bookID string) (dto.BookOutput, error) {
	return h.usecase.GetBook(ctx, bookID)
}

func (h CLIHandler) ListBooks(ctx context.Context, categoryID, search string, availableOnly bool) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx, dto.BookQuery{CategoryID: categoryID, Search: search, AvailableOnly: availableOnly})
}

func (h CLIHandler) CreateMember(ctx context.Context, name, email string) (dto.MutationOutput, error) {
	return h.usecase.CreateMember(ctx, dto.CreateMemberInput{Name: name, Email: email})
}

func (h CLIHandler) DeleteMember(ctx context.Context, memberID string) (dto.MutationOutput, error) {
	return h.usecase.DeleteMember(ctx, memberID)
}

func (h CLIHandler) ListMembers(ctx context.Context) ([]dto.MemberOutput, error) {
	return h.usecase.ListMembers(ctx)
}

func (h CLIHandler) GetMember(ctx context.Context, memberID string) (dto.MemberDetailOutput, error) {
	return h.usecase.GetMember(ctx, memberID)
}

func (h CLIHandler) Borrow(ctx context.Context, bookID, memberID string, dueDays int) (dto.MutationOutput, error) {
	return h.usecase.BorrowBook(ctx, dto.BorrowInput{BookID: bookID, MemberID: memberID, DueDays: dueDays})
}

func (h CLIHandler) Return(ctx context.Context, loanID string) (dto.MutationOutput, error) {
	return h.usecase.ReturnBook(ctx, loanID)
}

func (h CLIHandler) ListLoans(ctx context.Context, filter, memberID string) ([]dto.LoanOutput, error) {
	return h.usecase.ListLoans(ctx, dto.LoanQuery{Filter: filter, MemberID: memberID})
}

func (h CLIHandler) Seed(ctx context.Context) (dto.MutationOutput, error) {
	return h.usecase.Seed(ctx)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

// Usecase exposes the port for presentation layers that need more than the CLI verbs.
func (h CLIHandler) Usecase() libraryin.Usecase {
	return h.usecase
}
