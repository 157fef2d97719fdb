package differ

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single line no terminator", "hello", []string{"hello"}},
		{"single line with terminator", "hello\n", []string{"hello\n"}},
		{"two lines", "a\nb\n", []string{"a\n", "b\n"}},
		{"missing final terminator", "a\nb", []string{"a\n", "b"}},
		{"blank lines preserved", "a\n\nb\n", []string{"a\n", "\n", "b\n"}},
		{"crlf kept inside unit", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"lone newline", "\n", []string{"\n"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input))
		})
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	inputs := []string{
		"plain text\nwith lines\n",
		"no trailing newline",
		"\n\n\n",
		"mixed\r\nterminators\nhere",
		"  whitespace  \n\tpreserved\t\n",
	}

	for _, input := range inputs {
		assert.Equal(t, input, strings.Join(Tokenize(input), ""))
	}
}
