package wordcount

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Default(t *testing.T) {
	c := CountString("do the things, you do so well")

	got := DefaultFormatter.Format(c)
	want := "do: 2\r\nthe: 1\r\nthings: 1\r\nyou: 1\r\nso: 1\r\nwell: 1\r\n"
	assert.Equal(t, want, got)
}

func TestFormat_Empty(t *testing.T) {
	assert.Equal(t, "", DefaultFormatter.Format(NewCounts()))
	assert.Equal(t, "", DefaultFormatter.Format(CountString("  \n \n")))
}

func TestFormat_ZeroValueUsesCRLF(t *testing.T) {
	got := Formatter{}.Format(CountString("a"))
	assert.Equal(t, "a: 1\r\n", got)
}

func TestFormat_SortedLF(t *testing.T) {
	c := CountString("b a c a b a")
	got := Formatter{LineBreak: "\n", SortKeys: true}.Format(c)
	assert.Equal(t, "a: 3\nb: 2\nc: 1\n", got)
}

func TestFormat_ParseRoundTrip(t *testing.T) {
	c := CountString("It's a dog-eat-dog world; a DOG's life!")

	for _, f := range []Formatter{DefaultFormatter, {LineBreak: "\n", SortKeys: true}} {
		parsed, err := Parse(f.Format(c))
		require.NoError(t, err)

		got := make(map[string]int, len(parsed))
		for _, e := range parsed {
			got[e.Word] = e.Count
		}
		if diff := cmp.Diff(c.Map(), got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing separator", "word 1\r\n"},
		{"non numeric count", "word: one\r\n"},
		{"zero count", "word: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			assert.Error(t, err)
		})
	}
}

func TestParse_SkipsBlankLines(t *testing.T) {
	entries, err := Parse("\r\na: 1\r\n\r\nb: 2\r\n")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"a", 1}, {"b", 2}}, entries)
}
