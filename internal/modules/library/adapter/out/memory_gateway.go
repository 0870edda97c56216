package out

import (
	"context"
	"slices"
	"sync"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"
)

// MemoryGateway keeps everything in process memory. Data is lost on exit.
type MemoryGateway struct {
	mu   sync.RWMutex
	data domain.Dataset
}

func NewMemoryGateway(initial domain.Dataset) *MemoryGateway {
	return &MemoryGateway{data: initial}
}

var _ libraryout.Gateway = (*MemoryGateway)(nil)

func (g *MemoryGateway) LoadCategories(context.Context) ([]domain.Category, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.data.Categories), nil
}

func (g *MemoryGateway) LoadBooks(context.Context) ([]domain.Book, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.data.Books), nil
}

func (g *MemoryGateway) LoadMembers(context.Context) ([]domain.Member, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.data.Members), nil
}

func (g *MemoryGateway) LoadLoans(context.Context) ([]domain.Loan, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.data.Loans), nil
}

func (g *MemoryGateway) Save(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data = tx.Apply(g.data)
	return nil
}

func (g *MemoryGateway) Close() error { return nil }
