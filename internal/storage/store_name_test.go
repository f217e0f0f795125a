package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinker_URL(t *testing.T) {
	tests := []struct {
		base string
		name string
		want string
	}{
		{"http://localhost:8080", "test.txt_1", "http://localhost:8080/wordcounter/getcountresult/test.txt_1"},
		{"http://localhost:8080/", "test.txt_1", "http://localhost:8080/wordcounter/getcountresult/test.txt_1"},
		{"https://wc.example.com/api", "my notes.txt_2", "https://wc.example.com/api/wordcounter/getcountresult/my%20notes.txt_2"},
		{"", "a_1", "/wordcounter/getcountresult/a_1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Linker{BaseURL: tt.base}.URL(tt.name))
	}
}

func TestNameFromLocator(t *testing.T) {
	tests := []struct {
		locator string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080/wordcounter/getcountresult/test.txt_638", "test.txt_638", false},
		{"https://wc.example.com/api/wordcounter/getcountresult/my%20notes.txt_2", "my notes.txt_2", false},
		{"test.txt_638", "test.txt_638", false},
		{"  test.txt_638\n", "test.txt_638", false},
		{"http://localhost:8080/wordcounter/getcountresult/", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NameFromLocator(tt.locator)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName, "locator %q", tt.locator)
			continue
		}
		require.NoError(t, err, "locator %q", tt.locator)
		assert.Equal(t, tt.want, got)
	}
}

func TestLinkerRoundTrip(t *testing.T) {
	l := Linker{BaseURL: "http://localhost:8080"}
	for _, name := range []string{"test.txt_1", "a b.txt_2", "weird#name?.txt_3", "ünïcode.txt_4"} {
		got, err := NameFromLocator(l.URL(name))
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}
