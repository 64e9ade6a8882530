package service

import (
	"errors"
	"io/fs"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
	"github.com/Kei198403/sbi-pdf2text/pkg/pdftext"
)

// Code is a stable error category used in logs and metric labels.
type Code string

const (
	CodeClassification Code = "classification"
	CodeStructure      Code = "structure"
	CodeRecordCount    Code = "record_count"
	CodeIndex          Code = "index"
	CodeRender         Code = "render"
	CodeIO             Code = "io"
	CodeUnknown        Code = "unknown"
)

// Classify maps an error from document processing to its code.
func Classify(err error) Code {
	var (
		structErr *parser.StructuralError
		countErr  *parser.RecordCountError
		idxErr    *parser.IndexError
		pathErr   *fs.PathError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, sniffer.ErrUnrecognizedFormat):
		return CodeClassification
	case errors.As(err, &structErr):
		return CodeStructure
	case errors.As(err, &countErr):
		return CodeRecordCount
	case errors.As(err, &idxErr):
		return CodeIndex
	case errors.Is(err, pdftext.ErrRender):
		return CodeRender
	case errors.As(err, &pathErr):
		return CodeIO
	default:
		return CodeUnknown
	}
}

// Skippable reports whether the batch may continue past a document that
// failed with err. Layout and rendering failures belong to one document; any
// other failure stops the run.
func Skippable(err error) bool {
	switch Classify(err) {
	case CodeClassification, CodeStructure, CodeRecordCount, CodeIndex, CodeRender:
		return true
	}
	return false
}
