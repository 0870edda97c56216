package domain

import "slices"

// Dataset is the raw, unordered content of a gateway.
type Dataset struct {
	Categories []Category
	Books      []Book
	Members    []Member
	Loans      []Loan
}

// Transaction is an all-or-nothing change set. Puts insert or replace by ID;
// deletes of unknown IDs are ignored.
type Transaction struct {
	PutCategories    []Category
	PutBooks         []Book
	PutMembers       []Member
	PutLoans         []Loan
	DeleteCategories []string
	DeleteBooks      []string
	DeleteMembers    []string
	DeleteLoans      []string
}

func (t Transaction) Empty() bool {
	return len(t.PutCategories) == 0 && len(t.PutBooks) == 0 && len(t.PutMembers) == 0 && len(t.PutLoans) == 0 &&
		len(t.DeleteCategories) == 0 && len(t.DeleteBooks) == 0 && len(t.DeleteMembers) == 0 && len(t.DeleteLoans) == 0
}

// Apply returns a copy of d with the transaction applied.
func (t Transaction) Apply(d Dataset) Dataset {
	return Dataset{
		Categories: apply(d.Categories, t.PutCategories, t.DeleteCategories, func(c Category) string { return c.ID }),
		Books:      apply(d.Books, t.PutBooks, t.DeleteBooks, func(b Book) string { return b.ID }),
		Members:    apply(d.Members, t.PutMembers, t.DeleteMembers, func(m Member) string { return m.ID }),
		Loans:      apply(d.Loans, t.PutLoans, t.DeleteLoans, func(l Loan) string { return l.ID }),
	}
}

func apply[T any](current, puts []T, deletes []string, key func(T) string) []T {
	out := slices.Clone(current)
	for _, item := range puts {
		idx := slices.IndexFunc(out, func(existing T) bool { return key(existing) == key(item) })
		if idx >= 0 {
			out[idx] = item
			continue
		}
		out = append(out, item)
	}
	if len(deletes) == 0 {
		return out
	}
	return slices.DeleteFunc(out, func(item T) bool { return slices.Contains(deletes, key(item)) })
}
