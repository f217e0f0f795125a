package wordcount

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Delimiters is the set of characters that separate tokens on a line.
// Apostrophes, hyphens and any other punctuation stay inside the token.
const Delimiters = " ,.;:!?"

// Entry is a single word and the number of times it was seen.
type Entry struct {
	Word  string
	Count int
}

// Counts is a word frequency table that remembers the order in which
// words were first seen. The zero value is not usable; use NewCounts.
type Counts struct {
	order  []string
	counts map[string]int
	total  int
}

// NewCounts returns an empty table.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Add increments the count for an already normalized word.
func (c *Counts) Add(word string) {
	if _, seen := c.counts[word]; !seen {
		c.order = append(c.order, word)
	}
	c.counts[word]++
	c.total++
}

// Merge adds every entry of other to c. Words new to c are appended in
// other's order.
func (c *Counts) Merge(other *Counts) {
	for _, w := range other.order {
		if _, seen := c.counts[w]; !seen {
			c.order = append(c.order, w)
		}
		n := other.counts[w]
		c.counts[w] += n
		c.total += n
	}
}

// Get returns the count for word, or 0 if it was never seen.
func (c *Counts) Get(word string) int {
	return c.counts[word]
}

// Len returns the number of distinct words.
func (c *Counts) Len() int {
	return len(c.order)
}

// Total returns the number of tokens counted, i.e. the sum of all counts.
func (c *Counts) Total() int {
	return c.total
}

// Entries returns the table in first-occurrence order.
func (c *Counts) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, w := range c.order {
		out = append(out, Entry{Word: w, Count: c.counts[w]})
	}
	return out
}

// Map returns a copy of the table as a plain map.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for w, n := range c.counts {
		out[w] = n
	}
	return out
}

// Normalize maps a raw token to its table key: lowercase first, then trim
// surrounding whitespace.
func Normalize(token string) string {
	return strings.TrimSpace(strings.ToLower(token))
}

// Tokens splits one line on Delimiters, dropping the empty fragments that
// consecutive delimiters produce. The fragments are returned un-normalized.
// A line holding nothing but whitespace has no tokens.
func Tokens(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return strings.FieldsFunc(line, isDelimiter)
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune(Delimiters, r)
}

// CountLine adds every token of a single line to c.
func (c *Counts) CountLine(line string) {
	for _, tok := range Tokens(line) {
		// A whitespace fragment such as a lone tab counts under "".
		c.Add(Normalize(tok))
	}
}

// Count consumes r line by line until EOF and returns the frequency table.
// "\n", "\r\n" and a bare "\r" all end a line. Lines are not length
// limited. An empty stream yields an empty table.
func Count(r io.Reader) (*Counts, error) {
	counts := NewCounts()
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			for _, l := range splitLines(line) {
				counts.CountLine(l)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return counts, nil
			}
			return nil, fmt.Errorf("read input: %w", err)
		}
	}
}

// CountString counts an in-memory text.
func CountString(s string) *Counts {
	// strings.Reader never fails, so the error is always nil.
	counts, _ := Count(strings.NewReader(s))
	return counts
}

// splitLines breaks a chunk read up to '\n' at every line ending it holds.
// A "\r\n" pair always lands in one chunk, so it ends a single line.
func splitLines(chunk string) []string {
	chunk = strings.TrimSuffix(chunk, "\n")
	chunk = strings.TrimSuffix(chunk, "\r")
	return strings.Split(chunk, "\r")
}
