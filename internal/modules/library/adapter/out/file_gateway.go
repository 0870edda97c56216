package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"
)

const fileSchemaVersion = 1

type fileDocument struct {
	Version    int              `yaml:"version"`
	Categories []categoryRecord `yaml:"categories"`
	Books      []bookRecord     `yaml:"books"`
	Members    []memberRecord   `yaml:"members"`
	Loans      []loanRecord     `yaml:"loans"`
}

type categoryRecord struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type bookRecord struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Author      string    `yaml:"author"`
	ISBN        string    `yaml:"isbn,omitempty"`
	CategoryID  string    `yaml:"category_id,omitempty"`
	AddedAt     time.Time `yaml:"added_at"`
	IsAvailable bool      `yaml:"is_available"`
}

type memberRecord struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Email    string    `yaml:"email"`
	JoinedAt time.Time `yaml:"joined_at"`
}

type loanRecord struct {
	ID         string     `yaml:"id"`
	BookID     string     `yaml:"book_id"`
	MemberID   string     `yaml:"member_id"`
	BorrowedAt time.Time  `yaml:"borrowed_at"`
	DueAt      *time.Time `yaml:"due_at,omitempty"`
	ReturnedAt *time.Time `yaml:"returned_at,omitempty"`
}

// FileGateway keeps the whole library in one YAML file. Saves rewrite the
// file through a temporary sibling and a rename.
type FileGateway struct {
	mu   sync.Mutex
	path string
}

func NewFileGateway(path string) (*FileGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &FileGateway{path: path}, nil
}

var _ libraryout.Gateway = (*FileGateway)(nil)

func (g *FileGateway) LoadCategories(context.Context) ([]domain.Category, error) {
	data, err := g.load()
	return data.Categories, err
}

func (g *FileGateway) LoadBooks(context.Context) ([]domain.Book, error) {
	data, err := g.load()
	return data.Books, err
}

func (g *FileGateway) LoadMembers(context.Context) ([]domain.Member, error) {
	data, err := g.load()
	return data.Members, err
}

func (g *FileGateway) LoadLoans(context.Context) ([]domain.Loan, error) {
	data, err := g.load()
	return data.Loans, err
}

func (g *FileGateway) Save(_ context.Context, tx domain.Transaction) error {
	if tx.Empty() {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	current, err := g.read()
	if err != nil {
		return err
	}
	return g.write(tx.Apply(current))
}

func (g *FileGateway) Close() error { return nil }

func (g *FileGateway) load() (domain.Dataset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.read()
}

func (g *FileGateway) read() (domain.Dataset, error) {
	raw, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Dataset{}, nil
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read library file: %w", err)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode library file: %w", err)
	}
	if doc.Version > fileSchemaVersion {
		return domain.Dataset{}, fmt.Errorf("library file version %d is newer than supported version %d", doc.Version, fileSchemaVersion)
	}
	return fromDocument(doc), nil
}

func (g *FileGateway) write(data domain.Dataset) error {
	raw, err := yaml.Marshal(toDocument(data))
	if err != nil {
		return fmt.Errorf("encode library file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(g.path), ".library-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("replace library file: %w", err)
	}
	return nil
}

func toDocument(data domain.Dataset) fileDocument {
	doc := fileDocument{Version: fileSchemaVersion}
	for _, c := range data.Categories {
		doc.Categories = append(doc.Categories, categoryRecord{ID: c.ID, Name: c.Name})
	}
	for _, b := range data.Books {
		doc.Books = append(doc.Books, bookRecord{
			ID:          b.ID,
			Title:       b.Title,
			Author:      b.Author,
			ISBN:        b.ISBN,
			CategoryID:  b.CategoryID,
			AddedAt:     b.AddedAt,
			IsAvailable: b.IsAvailable,
		})
	}
	for _, m := range data.Members {
		doc.Members = append(doc.Members, memberRecord{ID: m.ID, Name: m.Name, Email: m.Email, JoinedAt: m.JoinedAt})
	}
	for _, l := range data.Loans {
		doc.Loans = append(doc.Loans, loanRecord{
			ID:         l.ID,
			BookID:     l.BookID,
			MemberID:   l.MemberID,
			BorrowedAt: l.BorrowedAt,
			DueAt:      timePtr(l.DueAt),
			ReturnedAt: timePtr(l.ReturnedAt),
		})
	}
	return doc
}

func fromDocument(doc fileDocument) domain.Dataset {
	data := domain.Dataset{}
	for _, c := range doc.Categories {
		data.Categories = append(data.Categories, domain.Category{ID: c.ID, Name: c.Name})
	}
	for _, b := range doc.Books {
		data.Books = append(data.Books, domain.Book{
			ID:          b.ID,
			Title:       b.Title,
			Author:      b.Author,
			ISBN:        b.ISBN,
			CategoryID:  b.CategoryID,
			AddedAt:     b.AddedAt,
			IsAvailable: b.IsAvailable,
		})
	}
	for _, m := range doc.Members {
		data.Members = append(data.Members, domain.Member{ID: m.ID, Name: m.Name, Email: m.Email, JoinedAt: m.JoinedAt})
	}
	for _, l := range doc.Loans {
		loan := domain.Loan{ID: l.ID, BookID: l.BookID, MemberID: l.MemberID, BorrowedAt: l.BorrowedAt}
		if l.DueAt != nil {
			loan.DueAt = *l.DueAt
		}
		if l.ReturnedAt != nil {
			loan.ReturnedAt = *l.ReturnedAt
		}
		data.Loans = append(data.Loans, loan)
	}
	return data
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
