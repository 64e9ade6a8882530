// Package export serializes extracted dividend records to CSV and XLSX.
package export

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/parser"
	"github.com/Kei198403/sbi-pdf2text/internal/domain/dividend/sniffer"
)

// Collector accumulates output rows across a batch. It is safe for
// concurrent use.
type Collector struct {
	mu       sync.Mutex
	japanese [][]string
	foreign  [][]string
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Write appends the rows of res to the table for its format.
func (c *Collector) Write(_ context.Context, _ uuid.UUID, res *parser.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range res.Records {
		if res.Format == sniffer.JapaneseDividend {
			c.japanese = append(c.japanese, rec.Row())
		} else {
			c.foreign = append(c.foreign, rec.Row())
		}
	}
	return nil
}

// Japanese returns a copy of the collected Japanese rows.
func (c *Collector) Japanese() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.japanese...)
}

// Foreign returns a copy of the collected foreign rows.
func (c *Collector) Foreign() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.foreign...)
}

// Len returns the number of collected rows.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.japanese) + len(c.foreign)
}
