package sniffer

import (
	"github.com/cloudflare/ahocorasick"
)

// PhraseSet finds a fixed set of landmark phrases in rendered lines in a single
// pass per line using the Aho-Corasick algorithm.
type PhraseSet struct {
	phrases []string
	matcher *ahocorasick.Matcher
}

// Hits is a bit set of phrase indexes found on one line.
type Hits uint64

// Has reports whether the phrase at index i was found.
func (h Hits) Has(i int) bool { return h&(1<<uint(i)) != 0 }

// Any reports whether any phrase was found.
func (h Hits) Any() bool { return h != 0 }

// NewPhraseSet builds a matcher for up to 64 phrases.
func NewPhraseSet(phrases ...string) *PhraseSet {
	if len(phrases) > 64 {
		panic("sniffer: too many phrases")
	}
	return &PhraseSet{
		phrases: phrases,
		matcher: ahocorasick.NewStringMatcher(phrases),
	}
}

// Scan returns the phrases contained in line.
func (p *PhraseSet) Scan(line string) Hits {
	if line == "" {
		return 0
	}
	var h Hits
	for _, idx := range p.matcher.MatchThreadSafe([]byte(line)) {
		h |= 1 << uint(idx)
	}
	return h
}

// Count returns how many lines contain the phrase at index i.
func (p *PhraseSet) Count(lines []string, i int) int {
	n := 0
	for _, line := range lines {
		if p.Scan(line).Has(i) {
			n++
		}
	}
	return n
}

// Phrase returns the phrase registered at index i.
func (p *PhraseSet) Phrase(i int) string { return p.phrases[i] }
