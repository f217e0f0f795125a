// Package service runs the count → format → save pipeline and the
// retrieval path on top of a storage.Store, classifying every failure as
// invalid input, not found, or a processing failure.
package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"word-counter/internal/storage"
	"word-counter/internal/wordcount"
)

// Options tunes a Service. The zero value is usable.
type Options struct {
	Formatter wordcount.Formatter
	// Clock supplies the time used for artifact name suffixes.
	Clock func() time.Time
}

// Result describes a stored count.
type Result struct {
	Name    string `json:"name"`
	Locator string `json:"url"`
	Words   int    `json:"words"`  // distinct words
	Tokens  int    `json:"tokens"` // total words
	Bytes   int64  `json:"bytes"`  // input size
}

// Service is safe for concurrent use.
type Service struct {
	store     storage.Store
	formatter wordcount.Formatter
	clock     func() time.Time

	mu         sync.Mutex
	lastSuffix int64
}

// New returns a Service writing to and reading from store.
func New(store storage.Store, opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:     store,
		formatter: opts.Formatter,
		clock:     clock,
	}
}

// countingReader tracks how many bytes were consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// CountAndStore counts the words in r, formats the table and saves it
// under a name derived from fileName. A zero-length input is rejected
// with ErrInvalidInput before counting starts and nothing is written.
func (s *Service) CountAndStore(ctx context.Context, fileName string, r io.Reader) (Result, error) {
	if r == nil {
		return Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	base := BaseName(fileName)
	if base == "" {
		return Result{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
		}
		return Result{}, fmt.Errorf("%w: read input: %w", ErrProcessing, err)
	}

	cr := &countingReader{r: br}
	counts, err := wordcount.Count(cr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: count words: %w", ErrProcessing, err)
	}

	content := s.formatter.Format(counts)
	name := base + "_" + strconv.FormatInt(s.nextSuffix(), 10)

	locator, err := s.store.Save(ctx, name, []byte(content))
	if err != nil {
		return Result{}, fmt.Errorf("%w: save %s: %w", ErrProcessing, name, err)
	}

	return Result{
		Name:    name,
		Locator: locator,
		Words:   counts.Len(),
		Tokens:  counts.Total(),
		Bytes:   cr.n,
	}, nil
}

// Fetch returns the artifact saved under name.
func (s *Service) Fetch(ctx context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if err := storage.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	b, err := s.store.Read(ctx, name)
	if err != nil {
		if Kind(err) == ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrProcessing, name, err)
	}
	return b, nil
}

// nextSuffix returns the current time in nanoseconds, bumped when needed
// so that suffixes handed out by one Service are strictly increasing.
func (s *Service) nextSuffix() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.clock().UnixNano()
	if n <= s.lastSuffix {
		n = s.lastSuffix + 1
	}
	s.lastSuffix = n
	return n
}

// BaseName reduces an uploaded file name to something usable as the
// prefix of an artifact name: directory components are dropped, path
// separators and NUL bytes are replaced, and surrounding spaces and dots
// are trimmed. Long names are cut to 200 bytes keeping the extension.
func BaseName(fileName string) string {
	name := strings.ReplaceAll(fileName, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.Trim(name, " .")

	const maxLen = 200
	if len(name) > maxLen {
		ext := filepath.Ext(name)
		if len(ext) > 20 {
			ext = ""
		}
		name = strings.ToValidUTF8(name[:maxLen-len(ext)], "") + ext
	}
	return name
}
