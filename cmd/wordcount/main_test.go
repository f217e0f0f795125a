package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"word-counter/internal/server"
	"word-counter/internal/service"
	"word-counter/internal/storage"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCount_ReferenceOutput(t *testing.T) {
	path := writeFile(t, "test.txt", "do the things, you do so well")

	out, err := runCLI(t, "", "count", path)
	require.NoError(t, err)
	assert.Equal(t, "do: 2\r\nthe: 1\r\nthings: 1\r\nyou: 1\r\nso: 1\r\nwell: 1\r\n", out)
}

func TestCount_SortedLFAcrossFiles(t *testing.T) {
	a := writeFile(t, "a.txt", "b a b")
	b := writeFile(t, "b.txt", "c b a")

	out, err := runCLI(t, "", "count", "--sorted", "--lf", a, b)
	require.NoError(t, err)
	assert.Equal(t, "b: 3\na: 2\nc: 1\n", out)
}

func TestCount_Stdin(t *testing.T) {
	out, err := runCLI(t, "Hello, HELLO!\n", "count", "-")
	require.NoError(t, err)
	assert.Equal(t, "hello: 2\r\n", out)
}

func TestCount_MissingFile(t *testing.T) {
	_, err := runCLI(t, "", "count", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)

	_, err = runCLI(t, "", "count")
	assert.Error(t, err, "count needs at least one file")
}

func TestUploadThenFetch(t *testing.T) {
	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	store := storage.NewMemory(storage.Linker{BaseURL: srv.URL})
	handler = server.New(server.Config{
		Service: service.New(store, service.Options{}),
		Logger:  server.NewLogger(io.Discard, "text", server.LogLevelError),
	}).Handler()

	path := writeFile(t, "notes.txt", "do the things, you do so well")

	out, err := runCLI(t, "", "upload", path, "--server", srv.URL, "--retries", "1")
	require.NoError(t, err)
	locator := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(locator, srv.URL+storage.ResultPath+"notes.txt_"), locator)

	out, err = runCLI(t, "", "fetch", locator)
	require.NoError(t, err)
	assert.Equal(t, "do: 2\r\nthe: 1\r\nthings: 1\r\nyou: 1\r\nso: 1\r\nwell: 1\r\n", out)

	name, err := storage.NameFromLocator(locator)
	require.NoError(t, err)
	dest := filepath.Join(t.TempDir(), "result.txt")
	_, err = runCLI(t, "", "fetch", name, "--server", srv.URL, "-o", dest)
	require.NoError(t, err)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "do: 2\r\nthe: 1\r\nthings: 1\r\nyou: 1\r\nso: 1\r\nwell: 1\r\n", string(b))

	_, err = runCLI(t, "", "fetch", "notes.txt_0", "--server", srv.URL, "--retries", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result named")
}
