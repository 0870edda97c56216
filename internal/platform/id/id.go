package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// UUID produces random (version 4) identifiers.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Sequence hands out ids from a fixed list, then falls back to UUIDs.
type Sequence struct {
	ids []string
}

func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) New() string {
	if len(s.ids) == 0 {
		return uuid.NewString()
	}
	next := s.ids[0]
	s.ids = s.ids[1:]
	return next
}
