package out_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	libraryout "libtrack/internal/modules/library/adapter/out"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// minimalPDF builds a one-page PDF whose info dictionary carries title and author.
func minimalPDF(title, author string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		fmt.Sprintf("<< /Title (%s) /Author (%s) >>", title, author),
	}
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFMetadataReader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dispossessed.pdf")
	if err := os.WriteFile(path, minimalPDF("The Dispossessed", "Ursula K. Le Guin"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	meta, err := libraryout.NewPDFMetadataReader().ReadMetadata(context.Background(), path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if meta.Title != "The Dispossessed" || meta.Author != "Ursula K. Le Guin" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.Pages != 1 {
		t.Fatalf("expected one page, got %d", meta.Pages)
	}
}

func TestPDFMetadataReaderMissingFile(t *testing.T) {
	t.Parallel()
	_, err := libraryout.NewPDFMetadataReader().ReadMetadata(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
