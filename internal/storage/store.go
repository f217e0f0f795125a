package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrNotFound is returned by Read when no artifact has the given name.
	ErrNotFound = errors.New("artifact not found")
	// ErrExists is returned by Save when the name is already taken.
	ErrExists = errors.New("artifact already exists")
	// ErrInvalidName is returned for names that cannot be used as a key.
	ErrInvalidName = errors.New("invalid artifact name")
)

// Store persists artifacts under a name and reads them back.
type Store interface {
	// Save stores content under name and returns a locator whose final
	// path segment is name.
	Save(ctx context.Context, name string, content []byte) (string, error)
	// Read returns the content saved under name, or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Pinger is implemented by backends that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResultPath is the HTTP path prefix under which artifacts are served.
const ResultPath = "/wordcounter/getcountresult/"

// Linker turns artifact names into locators.
type Linker struct {
	BaseURL string // e.g. "http://localhost:8080"
}

// URL returns the retrieval URL for name.
func (l Linker) URL(name string) string {
	return strings.TrimRight(l.BaseURL, "/") + ResultPath + url.PathEscape(name)
}

// NameFromLocator extracts the artifact name from a locator returned by
// Save. A bare name (no slash) is returned unchanged.
func NameFromLocator(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		locator = u.EscapedPath()
	}
	if i := strings.LastIndex(locator, "/"); i >= 0 {
		locator = locator[i+1:]
	}
	name, err := url.PathUnescape(locator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateName rejects names that are empty, contain path separators or
// NUL bytes, or are "." / "..".
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
