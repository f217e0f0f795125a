package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() Options {
	return Options{RetryMax: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond}
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		_, err := New(raw, Options{})
		assert.Error(t, err, "New(%q)", raw)
	}
}

func TestUpload(t *testing.T) {
	var gotName, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wordcounter/countwords", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotType, gotBody = hdr.Filename, hdr.Header.Get("Content-Type"), string(b)

		_, _ = io.WriteString(w, "http://example.test/wordcounter/getcountresult/notes.txt_1")
	}))
	defer srv.Close()

	c, err := New(srv.URL, fastOptions())
	require.NoError(t, err)

	locator, err := c.Upload(context.Background(), "/home/me/notes.txt", strings.NewReader("do the things"))
	require.NoError(t, err)

	assert.Equal(t, "http://example.test/wordcounter/getcountresult/notes.txt_1", locator)
	assert.Equal(t, "notes.txt", gotName)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "do the things", gotBody)
}

func TestUpload_BadRequestNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "File is empty.", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(srv.URL, fastOptions())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "empty.txt", strings.NewReader(""))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "File is empty.", se.Message)
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetch_ByNameAndLocator(t *testing.T) {
	const content = "do: 2\r\nthe: 1\r\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wordcounter/getcountresult/test.txt_42" {
			http.Error(w, "File not found.", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, content)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", fastOptions())
	require.NoError(t, err)
	ctx := context.Background()

	b, err := c.Fetch(ctx, "test.txt_42")
	require.NoError(t, err)
	assert.Equal(t, content, string(b))

	b, err = c.Fetch(ctx, srv.URL+"/wordcounter/getcountresult/test.txt_42")
	require.NoError(t, err)
	assert.Equal(t, content, string(b))

	_, err = c.Fetch(ctx, "test.txt_43")
	assert.True(t, IsNotFound(err), "expected not found, got %v", err)
}

func TestFetch_InvalidReference(t *testing.T) {
	c, err := New("http://localhost:1", fastOptions())
	require.NoError(t, err)

	for _, ref := range []string{"", "  ", "../etc", "http://host/wordcounter/getcountresult/"} {
		_, err := c.Fetch(context.Background(), ref)
		assert.Error(t, err, "Fetch(%q)", ref)
	}
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "a: 1\r\n")
	}))
	defer srv.Close()

	c, err := New(srv.URL, fastOptions())
	require.NoError(t, err)

	b, err := c.Fetch(context.Background(), "a.txt_1")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\r\n", string(b))
	assert.EqualValues(t, 2, hits.Load())
}

func TestFetch_GivesUpWithLastAnswer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, fastOptions())
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "a.txt_1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.EqualValues(t, 3, hits.Load(), "one attempt plus two retries")
}
