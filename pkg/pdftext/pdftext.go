// Package pdftext turns dividend notice PDFs into the views the parser works
// on: the rendered text of every page, or the grids of a table export.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Kei198403/sbi-pdf2text/pkg/storage"
)

// ErrRender is returned when a PDF cannot be turned into text.
var ErrRender = errors.New("failed to render pdf")

// Renderer produces the rendered text of a document.
type Renderer interface {
	Render(ctx context.Context, path string) (string, error)
}

// PDFRenderer renders text with ledongthuc/pdf, one page after another.
type PDFRenderer struct {
	logger *slog.Logger
}

// NewPDFRenderer creates a renderer.
func NewPDFRenderer(logger *slog.Logger) *PDFRenderer {
	return &PDFRenderer{logger: logger}
}

// Render returns the plain text of every page, separated by newlines.
func (r *PDFRenderer) Render(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, path, err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: %s page %d: %w", ErrRender, path, i, err)
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}

	r.logger.Debug("rendered pdf",
		slog.String("path", path),
		slog.Int("pages", pages),
		slog.Int("bytes", b.Len()),
	)
	return b.String(), nil
}

// CachedRenderer replays saved text when it exists and renders otherwise.
// Saved text may have been corrected by hand after a failed run.
type CachedRenderer struct {
	store  storage.TextStore
	next   Renderer
	logger *slog.Logger
}

// NewCachedRenderer wraps next with the saved-text cache.
func NewCachedRenderer(store storage.TextStore, next Renderer, logger *slog.Logger) *CachedRenderer {
	return &CachedRenderer{store: store, next: next, logger: logger}
}

// Render returns the saved text for path, or renders the PDF.
func (r *CachedRenderer) Render(ctx context.Context, path string) (string, error) {
	text, err := r.store.LoadText(ctx, path)
	switch {
	case err == nil:
		r.logger.Info("replaying saved text",
			slog.String("path", path),
			slog.String("text", r.store.Path(path)),
		)
		return text, nil
	case errors.Is(err, storage.ErrNotFound):
		return r.next.Render(ctx, path)
	default:
		return "", err
	}
}
