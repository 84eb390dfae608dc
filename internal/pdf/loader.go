package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/gen2brain/go-fitz"
	plainpdf "github.com/ledongthuc/pdf"
)

// PageLoader returns the text of every page of a PDF, in page order.
type PageLoader interface {
	LoadPages(ctx context.Context, path string, onPage func(done, total int)) ([]string, error)
}

// NewLoader returns the loader registered under name ("fitz" or "plain").
func NewLoader(name string) (PageLoader, error) {
	switch name {
	case "", "fitz":
		return FitzLoader{}, nil
	case "plain":
		return PlainLoader{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf loader %q", name)
	}
}

// FitzLoader extracts page text with MuPDF.
type FitzLoader struct{}

// LoadPages implements PageLoader.
func (FitzLoader) LoadPages(ctx context.Context, path string, onPage func(done, total int)) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]string, 0, total)

	for n := 0; n < total; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", n+1, err)
		}
		pages = append(pages, text)

		if onPage != nil {
			onPage(n+1, total)
		}
	}

	return pages, nil
}

// PlainLoader extracts page text with a pure-Go PDF reader. It needs no C libraries
// but handles fewer font encodings than FitzLoader.
type PlainLoader struct{}

// LoadPages implements PageLoader.
func (PlainLoader) LoadPages(ctx context.Context, path string, onPage func(done, total int)) (pages []string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse PDF: %v", r)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat PDF: %w", err)
	}

	reader, err := plainpdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("create PDF reader: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	fonts := make(map[string]*plainpdf.Font)

	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var text string
		if page := reader.Page(i); !page.V.IsNull() {
			for _, name := range page.Fonts() {
				if _, ok := fonts[name]; !ok {
					f := page.Font(name)
					fonts[name] = &f
				}
			}

			text, err = page.GetPlainText(fonts)
			if err != nil {
				return nil, fmt.Errorf("read page %d: %w", i, err)
			}
		}
		pages = append(pages, text)

		if onPage != nil {
			onPage(i, total)
		}
	}

	return pages, nil
}
