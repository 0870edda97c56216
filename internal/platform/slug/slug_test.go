package slug_test

import (
	"testing"

	"libtrack/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Nightly Backup":    "nightly-backup",
		"  Café Crème!! ":   "cafe-creme",
		"Andrzej Sapkowski": "andrzej-sapkowski",
		"***":               "untitled",
		"":                  "untitled",
	}
	for input, want := range cases {
		if got := slug.Make(input); got != want {
			t.Fatalf("Make(%q) = %q, want %q", input, got, want)
		}
	}
}
