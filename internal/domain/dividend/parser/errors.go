package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

// Violation is one failed layout check inside a record window.
type Violation struct {
	Offset int
	Want   string
	Got    string
}

// StructuralError reports a record window whose fixed offsets do not hold what
// the layout requires. Window holds the full window for diagnosis.
type StructuralError struct {
	Format     sniffer.Format
	Start      int
	Violations []Violation
	Window     []string
}

func (e *StructuralError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("%s record at line %d: malformed layout", e.Format, e.Start)
	}
	v := e.Violations[0]
	msg := fmt.Sprintf("%s record at line %d: offset %d: want %s, got %q", e.Format, e.Start, v.Offset, v.Want, v.Got)
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// IndexError reports offset arithmetic that ran past the working copy.
type IndexError struct {
	Format sniffer.Format
	Op     string
	Start  int
	Length int
	Lines  int
	// Window holds whatever part of the window was in range.
	Window []string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %s: window [%d, %d) exceeds %d lines", e.Format, e.Op, e.Start, e.Start+e.Length, e.Lines)
}

// RecordCountError reports a Japanese notice where the number of record
// markers differs from the number of records extracted.
type RecordCountError struct {
	Markers int
	Records int
}

func (e *RecordCountError) Error() string {
	return fmt.Sprintf("found %d record markers but extracted %d records", e.Markers, e.Records)
}

// windowOf returns the diagnostic window carried by err, if any.
func windowOf(err error) []string {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Window
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Window
	}
	return nil
}

func describeWindow(window []string) string {
	var b strings.Builder
	for i, line := range window {
		fmt.Fprintf(&b, "%3d|%s\n", i, line)
	}
	return b.String()
}
