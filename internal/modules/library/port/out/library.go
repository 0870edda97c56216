package out

import (
	"context"

	"libtrack/internal/modules/library/domain"
)

// Gateway is durable storage for the library. Save is all-or-nothing: either
// every change in the transaction is persisted or none is.
type Gateway interface {
	LoadCategories(ctx context.Context) ([]domain.Category, error)
	LoadBooks(ctx context.Context) ([]domain.Book, error)
	LoadMembers(ctx context.Context) ([]domain.Member, error)
	LoadLoans(ctx context.Context) ([]domain.Loan, error)
	Save(ctx context.Context, tx domain.Transaction) error
	Close() error
}

// MetadataReader extracts bibliographic details from a document file.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, path string) (domain.DocumentMetadata, error)
}
