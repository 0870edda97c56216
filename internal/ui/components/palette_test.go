package components_test

import (
	"testing"

	"libtrack/internal/ui/components"
)

func TestMatchingFiltersByCommandWord(t *testing.T) {
	t.Parallel()
	got := components.Matching("book:del", 5)
	if len(got) != 1 || got[0] != "book:delete" {
		t.Fatalf("unexpected hints: %v", got)
	}
	if got := components.Matching("", 3); len(got) != 3 {
		t.Fatalf("expected 3 hints, got %d", len(got))
	}
	if got := components.Matching("loans ov", 5); len(got) != 1 {
		t.Fatalf("expected argument text to be ignored, got %v", got)
	}
	if got := components.Matching("nope", 5); len(got) != 0 {
		t.Fatalf("expected no hints, got %v", got)
	}
}
