// Package client talks to a running word counter over HTTP. Transient
// failures (connection errors, 429, 5xx) are retried with backoff by
// go-retryablehttp; other 4xx answers are returned immediately.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"word-counter/internal/storage"
)

// maxErrorBody caps how much of an error answer is kept.
const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server answered %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Options tunes the client. Zero values pick the defaults.
type Options struct {
	RetryMax     int           // default 3
	RetryWaitMin time.Duration // default 200ms
	RetryWaitMax time.Duration // default 5s
	Timeout      time.Duration // per attempt, default 30s
	// Logger receives retry diagnostics; nil keeps the client silent.
	Logger retryablehttp.LeveledLogger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New returns a client for the service at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	if opts.RetryMax > 0 {
		rc.RetryMax = opts.RetryMax
	}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}
	// Hand the last answer back instead of a generic "giving up" error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}, nil
}

// Upload sends content as the text/plain file fileName and returns the
// locator of the stored result.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	h.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wordcounter/countwords", body.Bytes())
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/plain")

	b, err := c.do(req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Fetch downloads a stored result. ref is either a full locator URL or a
// bare result name resolved against the client's server.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty result reference")
	}
	if strings.Contains(ref, "://") {
		if _, err := storage.NameFromLocator(ref); err != nil {
			return "", fmt.Errorf("invalid locator %q: %w", ref, err)
		}
		return ref, nil
	}
	if err := storage.ValidateName(ref); err != nil {
		return "", fmt.Errorf("invalid result name %q: %w", ref, err)
	}
	return storage.Linker{BaseURL: c.baseURL}.URL(ref), nil
}

func (c *Client) do(req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return io.ReadAll(resp.Body)
}
