package in

import (
	"context"

	"libtrack/internal/modules/library/dto"
)

type Usecase interface {
	CreateCategory(ctx context.Context, input dto.CreateCategoryInput) (dto.MutationOutput, error)
	DeleteCategory(ctx context.Context, categoryID string) (dto.MutationOutput, error)
	CreateBook(ctx context.Context, input dto.BookInput) (dto.MutationOutput, error)
	UpdateBook(ctx context.Context, input dto.UpdateBookInput) (dto.MutationOutput, error)
	DeleteBook(ctx context.Context, bookID string) (dto.MutationOutput, error)
	ImportPDF(ctx context.Context, input dto.ImportPDFInput) (dto.MutationOutput, error)
	CreateMember(ctx context.Context, input dto.CreateMemberInput) (dto.MutationOutput, error)
	DeleteMember(ctx context.Context, memberID string) (dto.MutationOutput, error)
	BorrowBook(ctx context.Context, input dto.BorrowInput) (dto.MutationOutput, error)
	ReturnBook(ctx context.Context, loanID string) (dto.MutationOutput, error)
	Seed(ctx context.Context) (dto.MutationOutput, error)

	ListCategories(ctx context.Context) ([]dto.CategoryOutput, error)
	ListBooks(ctx context.Context, query dto.BookQuery) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, bookID string) (dto.BookOutput, error)
	ListMembers(ctx context.Context) ([]dto.MemberOutput, error)
	GetMember(ctx context.Context, memberID string) (dto.MemberDetailOutput, error)
	ListLoans(ctx context.Context, query dto.LoanQuery) ([]dto.LoanOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	Export(ctx context.Context) (dto.SnapshotOutput, error)
	DefaultDueDays() int

	// Subscribe registers fn to run after every committed change and returns
	// a function that removes it.
	Subscribe(fn func(dto.ChangeEvent)) (unsubscribe func())
}
