// Package extract turns uploaded resume bytes into reading-order text.
//
// PDFs are read glyph by glyph with github.com/ledongthuc/pdf and rebuilt
// through the layout package; DOCX paragraphs are read straight from
// word/document.xml; plain text passes through.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"resume-ats/internal/layout"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
	mimeZip  = "application/zip"
)

var (
	// ErrUnsupportedFormat is returned for files that are not PDF, DOCX or text.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorruptedFile is returned when a supported file cannot be parsed.
	ErrCorruptedFile = errors.New("corrupted file")
)

// Result is the outcome of one extraction.
type Result struct {
	Text     string
	MimeType string
	Pages    int
}

// Extractor reads documents. The zero value uses layout.DefaultOptions.
type Extractor struct {
	Layout layout.Options
}

// New returns an Extractor using opts for page reconstruction.
func New(opts layout.Options) *Extractor {
	return &Extractor{Layout: opts}
}

// Extract uses a default Extractor.
func Extract(ctx context.Context, data []byte, mimeType string, fileName string) (Result, error) {
	return New(layout.DefaultOptions()).Extract(ctx, data, mimeType, fileName)
}

// Extract detects the document type and returns its raw reading-order text.
// The text is not normalized.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty file", ErrCorruptedFile)
	}

	detected := DetectMimeType(data, mimeType, fileName)
	switch detected {
	case MimePDF:
		pages, err := readPDFPages(ctx, data)
		if err != nil {
			return Result{}, err
		}
		opts := e.Layout
		if opts == (layout.Options{}) {
			opts = layout.DefaultOptions()
		}
		return Result{Text: opts.ReconstructDocument(pages), MimeType: detected, Pages: len(pages)}, nil
	case MimeDOCX:
		text, err := readDOCX(data)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, MimeType: detected, Pages: 1}, nil
	case MimeText:
		if !utf8.Valid(data) {
			return Result{}, fmt.Errorf("%w: text is not valid utf-8", ErrCorruptedFile)
		}
		return Result{Text: string(data), MimeType: detected, Pages: 1}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}
}

// DetectMimeType sniffs content first and falls back to the declared type
// and file extension. OOXML containers detected as plain zip are mapped by
// their entries.
func DetectMimeType(data []byte, declared string, fileName string) string {
	sniffed := mimetype.Detect(data)
	switch {
	case sniffed.Is(MimePDF):
		return MimePDF
	case sniffed.Is(MimeDOCX):
		return MimeDOCX
	case sniffed.Is(mimeZip):
		if hasZipEntry(data, "word/document.xml") {
			return MimeDOCX
		}
		return mimeZip
	case sniffed.Is(MimeText):
		return MimeText
	}

	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeText
	}
	return sniffed.String()
}

func hasZipEntry(data []byte, entry string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == entry {
			return true
		}
	}
	return false
}
