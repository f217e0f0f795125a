package wordcount

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CRLF is the line terminator used by DefaultFormatter.
const CRLF = "\r\n"

// Formatter renders a Counts table as text, one "word: count" line per
// entry with a line break after every entry including the last.
type Formatter struct {
	// LineBreak terminates every line. Empty means CRLF.
	LineBreak string
	// SortKeys orders lines by count (descending) then word (ascending)
	// instead of first-occurrence order.
	SortKeys bool
}

// DefaultFormatter writes entries in first-occurrence order with CRLF
// line endings.
var DefaultFormatter = Formatter{LineBreak: CRLF}

// Format returns the serialized table. An empty table yields "".
func (f Formatter) Format(c *Counts) string {
	lb := f.LineBreak
	if lb == "" {
		lb = CRLF
	}

	entries := c.Entries()
	if f.SortKeys {
		SortEntries(entries)
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Word)
		sb.WriteString(": ")
		sb.WriteString(strconv.Itoa(e.Count))
		sb.WriteString(lb)
	}
	return sb.String()
}

// SortEntries orders entries by count descending, ties broken by word.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
}

// Parse reads a formatted result back into entries. Both CRLF and LF
// terminated content is accepted; blank lines are ignored.
func Parse(content string) ([]Entry, error) {
	var out []Entry
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.LastIndex(line, ": ")
		if idx < 0 {
			return nil, fmt.Errorf("line %d: missing separator", lineNo)
		}
		n, err := strconv.Atoi(line[idx+2:])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: bad count %q", lineNo, line[idx+2:])
		}
		out = append(out, Entry{Word: line[:idx], Count: n})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
