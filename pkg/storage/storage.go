// Package storage keeps the raw rendered text of processed documents so that
// a failed extraction can be corrected by hand and replayed without rendering
// the PDF again.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no text has been saved for a source.
var ErrNotFound = errors.New("saved text not found")

// TextStore defines the operations on the saved-text cache. Entries are keyed
// by the source path and are never overwritten once written.
type TextStore interface {
	// SaveText writes text for source unless an entry already exists. It
	// reports whether a new entry was written.
	SaveText(ctx context.Context, source, text string) (bool, error)

	// LoadText returns the saved text for source, or ErrNotFound.
	LoadText(ctx context.Context, source string) (string, error)

	// Path returns where the entry for source lives.
	Path(source string) string
}
