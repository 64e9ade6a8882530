package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
)

// Options controls where and how the output files are written.
type Options struct {
	Dir      string
	Encoding string
	XLSX     bool
}

// Exporter writes collected rows to the output directory.
type Exporter struct {
	dir    string
	enc    encoding.Encoding
	xlsx   bool
	logger *slog.Logger
}

// NewExporter validates opts and creates an exporter.
func NewExporter(opts Options, logger *slog.Logger) (*Exporter, error) {
	enc, err := encodingFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Exporter{dir: opts.Dir, enc: enc, xlsx: opts.XLSX, logger: logger}, nil
}

// Export writes both CSV files, and the workbook when enabled. The files are
// written even when a table is empty. It returns the written paths.
func (e *Exporter) Export(c *Collector) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	japanese, foreign := c.Japanese(), c.Foreign()

	jpPath := filepath.Join(e.dir, JapaneseFile)
	if err := writeFile(jpPath, e.enc, func(w io.Writer) error { return WriteJapaneseCSV(w, japanese) }); err != nil {
		return nil, err
	}
	fgPath := filepath.Join(e.dir, ForeignFile)
	if err := writeFile(fgPath, e.enc, func(w io.Writer) error { return WriteForeignCSV(w, foreign) }); err != nil {
		return nil, err
	}
	paths := []string{jpPath, fgPath}

	if e.xlsx {
		path := filepath.Join(e.dir, WorkbookFile)
		if err := WriteWorkbook(path, japanese, foreign); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	e.logger.Info("output written",
		slog.String("dir", e.dir),
		slog.Int("japanese_rows", len(japanese)),
		slog.Int("foreign_rows", len(foreign)),
		slog.Bool("xlsx", e.xlsx),
	)
	return paths, nil
}
