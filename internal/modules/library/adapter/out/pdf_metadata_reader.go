package out

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rsc.io/pdf"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"
)

// PDFMetadataReader reads Title and Author from a PDF's document info dictionary.
type PDFMetadataReader struct{}

func NewPDFMetadataReader() libraryout.MetadataReader {
	return PDFMetadataReader{}
}

func (PDFMetadataReader) ReadMetadata(_ context.Context, path string) (domain.DocumentMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("stat pdf: %w", err)
	}
	doc, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("parse pdf: %w", err)
	}
	meta := doc.Trailer().Key("Info")
	return domain.DocumentMetadata{
		Title:  strings.TrimSpace(meta.Key("Title").Text()),
		Author: strings.TrimSpace(meta.Key("Author").Text()),
		Pages:  doc.NumPage(),
	}, nil
}
