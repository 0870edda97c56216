package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"
	"libtrack/internal/platform/clock"
	"libtrack/internal/platform/id"
)

const unknownAuthor = "Unknown Author"

// LibraryService runs every mutation as validate, build transaction, commit.
// Mutations are serialized; a rejected one writes nothing.
type LibraryService struct {
	mu       sync.Mutex
	clock    clock.Clock
	idGen    id.Generator
	store    *EntityStore
	metadata libraryout.MetadataReader
	logger   *clog.Logger
}

func NewLibraryService(clock clock.Clock, idGen id.Generator, store *EntityStore, metadata libraryout.MetadataReader, logger *clog.Logger) *LibraryService {
	return &LibraryService{clock: clock, idGen: idGen, store: store, metadata: metadata, logger: logger}
}

func (s *LibraryService) Load(ctx context.Context) error {
	return s.store.Reload(ctx)
}

func (s *LibraryService) Snapshot() domain.Snapshot {
	return s.store.Snapshot()
}

func (s *LibraryService) Now() time.Time {
	return s.clock.Now()
}

func (s *LibraryService) Subscribe(fn func(domain.Snapshot)) func() {
	return s.store.Subscribe(fn)
}

func (s *LibraryService) CreateCategory(ctx context.Context, name string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, err := domain.NewCategory(s.idGen.New(), name)
	if err != nil {
		return s.rejected("create category", err)
	}
	return s.commit(ctx, "create category", category.ID, domain.Transaction{PutCategories: []domain.Category{category}})
}

// DeleteCategory removes the category and uncategorizes its books.
func (s *LibraryService) DeleteCategory(ctx context.Context, categoryID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.Snapshot()
	if _, ok := snap.Category(categoryID); !ok {
		return s.skip("delete category", "category %q not found", categoryID)
	}
	tx := domain.Transaction{DeleteCategories: []string{categoryID}}
	for _, book := range snap.BooksInCategory(categoryID) {
		book.CategoryID = ""
		tx.PutBooks = append(tx.PutBooks, book)
	}
	return s.commit(ctx, "delete category", categoryID, tx)
}

func (s *LibraryService) CreateBook(ctx context.Context, title, author, isbn, categoryID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createBook(ctx, title, author, isbn, categoryID)
}

func (s *LibraryService) createBook(ctx context.Context, title, author, isbn, categoryID string) (domain.Outcome, error) {
	if outcome, ok := s.checkCategory(categoryID); !ok {
		return outcome, nil
	}
	book, err := domain.NewBook(s.idGen.New(), title, author, isbn, categoryID, s.clock.Now())
	if err != nil {
		return s.rejected("create book", err)
	}
	return s.commit(ctx, "create book", book.ID, domain.Transaction{PutBooks: []domain.Book{book}})
}

func (s *LibraryService) UpdateBook(ctx context.Context, bookID, title, author, isbn, categoryID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.store.Snapshot().Book(bookID)
	if !ok {
		return s.skip("update book", "book %q not found", bookID)
	}
	if outcome, ok := s.checkCategory(categoryID); !ok {
		return outcome, nil
	}
	if err := book.Revise(title, author, isbn, categoryID); err != nil {
		return s.rejected("update book", err)
	}
	return s.commit(ctx, "update book", book.ID, domain.Transaction{PutBooks: []domain.Book{book}})
}

// DeleteBook removes the book together with every loan that references it.
func (s *LibraryService) DeleteBook(ctx context.Context, bookID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.Snapshot()
	if _, ok := snap.Book(bookID); !ok {
		return s.skip("delete book", "book %q not found", bookID)
	}
	tx := domain.Transaction{DeleteBooks: []string{bookID}}
	for _, loan := range snap.LoansForBook(bookID) {
		tx.DeleteLoans = append(tx.DeleteLoans, loan.ID)
	}
	return s.commit(ctx, "delete book", bookID, tx)
}

// ImportBookFromPDF creates a book from the PDF's document info. A missing
// title falls back to the file name.
func (s *LibraryService) ImportBookFromPDF(ctx context.Context, path, categoryID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(path) == "" {
		return s.skip("import pdf", "file path is required")
	}
	meta, err := s.metadata.ReadMetadata(ctx, path)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("read pdf metadata: %w", err)
	}
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	author := strings.TrimSpace(meta.Author)
	if author == "" {
		author = unknownAuthor
	}
	return s.createBook(ctx, title, author, "", categoryID)
}

func (s *LibraryService) CreateMember(ctx context.Context, name, email string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, err := domain.NewMember(s.idGen.New(), name, email, s.clock.Now())
	if err != nil {
		return s.rejected("create member", err)
	}
	return s.commit(ctx, "create member", member.ID, domain.Transaction{PutMembers: []domain.Member{member}})
}

// DeleteMember removes the member only. Their loans stay and show an unknown member.
func (s *LibraryService) DeleteMember(ctx context.Context, memberID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Snapshot().Member(memberID); !ok {
		return s.skip("delete member", "member %q not found", memberID)
	}
	return s.commit(ctx, "delete member", memberID, domain.Transaction{DeleteMembers: []string{memberID}})
}

func (s *LibraryService) BorrowBook(ctx context.Context, bookID, memberID string, dueDays int) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.Snapshot()
	book, ok := snap.Book(bookID)
	if !ok {
		return s.skip("borrow book", "book %q not found", bookID)
	}
	member, ok := snap.Member(memberID)
	if !ok {
		return s.skip("borrow book", "member %q not found", memberID)
	}
	if open, ok := snap.OpenLoanForBook(bookID); ok {
		return s.skip("borrow book", "book %q is already on loan (%s)", book.Title, open.ID)
	}
	loan, err := domain.NewLoan(s.idGen.New(), book, member, s.clock.Now(), dueDays)
	if err != nil {
		return s.rejected("borrow book", err)
	}
	book.IsAvailable = false
	return s.commit(ctx, "borrow book", loan.ID, domain.Transaction{
		PutLoans: []domain.Loan{loan},
		PutBooks: []domain.Book{book},
	})
}

// ReturnBook closes the loan and frees its book. Returning a closed loan does nothing.
func (s *LibraryService) ReturnBook(ctx context.Context, loanID string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.Snapshot()
	loan, ok := snap.Loan(loanID)
	if !ok {
		return s.skip("return book", "loan %q not found", loanID)
	}
	if !loan.IsOpen() {
		return s.skip("return book", "loan %q was already returned", loanID)
	}
	loan.ReturnedAt = s.clock.Now()
	tx := domain.Transaction{PutLoans: []domain.Loan{loan}}
	if book, ok := snap.Book(loan.BookID); ok {
		book.IsAvailable = true
		tx.PutBooks = []domain.Book{book}
	}
	return s.commit(ctx, "return book", loan.ID, tx)
}

// Seed fills an empty library with demo data in a single transaction.
func (s *LibraryService) Seed(ctx context.Context, dueDays int) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.store.Snapshot()
	if len(snap.Categories()) > 0 || len(snap.Books()) > 0 || len(snap.Members()) > 0 {
		return s.skip("seed", "library already has data")
	}
	now := s.clock.Now()
	tx := domain.Transaction{}

	categoryIDs := map[string]string{}
	for _, name := range domain.SeedCategories {
		category, err := domain.NewCategory(s.idGen.New(), name)
		if err != nil {
			return s.rejected("seed", err)
		}
		categoryIDs[name] = category.ID
		tx.PutCategories = append(tx.PutCategories, category)
	}
	members := map[string]domain.Member{}
	for _, seed := range domain.SeedMembers {
		member, err := domain.NewMember(s.idGen.New(), seed.Name, seed.Email, now)
		if err != nil {
			return s.rejected("seed", err)
		}
		members[member.Name] = member
		tx.PutMembers = append(tx.PutMembers, member)
	}
	for _, seed := range domain.SeedBooks {
		book, err := domain.NewBook(s.idGen.New(), seed.Title, seed.Author, seed.ISBN, categoryIDs[seed.Category], now)
		if err != nil {
			return s.rejected("seed", err)
		}
		if borrower, ok := members[seed.Borrower]; ok {
			loan, err := domain.NewLoan(s.idGen.New(), book, borrower, now, dueDays)
			if err != nil {
				return s.rejected("seed", err)
			}
			book.IsAvailable = false
			tx.PutLoans = append(tx.PutLoans, loan)
		}
		tx.PutBooks = append(tx.PutBooks, book)
	}
	return s.commit(ctx, "seed", "", tx)
}

func (s *LibraryService) checkCategory(categoryID string) (domain.Outcome, bool) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return domain.Outcome{}, true
	}
	if _, ok := s.store.Snapshot().Category(categoryID); !ok {
		outcome, _ := s.skip("check category", "category %q not found", categoryID)
		return outcome, false
	}
	return domain.Outcome{}, true
}

func (s *LibraryService) commit(ctx context.Context, op, entityID string, tx domain.Transaction) (domain.Outcome, error) {
	if err := s.store.Commit(ctx, tx); err != nil {
		s.logger.Error("commit failed", "op", op, "err", err)
		return domain.Outcome{}, err
	}
	s.logger.Debug("committed", "op", op, "id", entityID)
	return domain.Applied(entityID), nil
}

func (s *LibraryService) rejected(op string, err error) (domain.Outcome, error) {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		s.logger.Debug("rejected", "op", op, "reason", rej.Reason)
		return domain.Skipped(rej.Reason), nil
	}
	return domain.Outcome{}, err
}

func (s *LibraryService) skip(op, format string, args ...any) (domain.Outcome, error) {
	reason := fmt.Sprintf(format, args...)
	s.logger.Debug("rejected", "op", op, "reason", reason)
	return domain.Skipped(reason), nil
}
