package esb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineParser(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		lines []LineResult
	}{
		{
			name: "single line",
			in:   "ESB\n",
			lines: []LineResult{
				{Line: "ESB", Complete: true},
			},
		},
		{
			name: "multiple lines",
			in:   "ESB\nRST\nhello\n",
			lines: []LineResult{
				{Line: "ESB", Complete: true},
				{Line: "RST", Complete: true},
				{Line: "hello", Complete: true},
			},
		},
		{
			name: "empty line",
			in:   "\n",
			lines: []LineResult{
				{Line: "", Complete: true},
			},
		},
		{
			name: "overflow truncates then recovers",
			in:   strings.Repeat("x", lineCap+8) + "\nESB\n",
			lines: []LineResult{
				{Line: strings.Repeat("x", lineCap), Complete: true, Truncated: true},
				{Line: "ESB", Complete: true},
			},
		},
		{
			name: "exactly at capacity is not truncated",
			in:   strings.Repeat("y", lineCap) + "\n",
			lines: []LineResult{
				{Line: strings.Repeat("y", lineCap), Complete: true},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser LineParser
			var lines []LineResult
			for _, b := range []byte(tc.in) {
				lr := parser.Parse(b)
				if b != '\n' {
					require.Equal(t, LineResult{}, lr)
					continue
				}
				lines = append(lines, lr)
			}
			require.Equal(t, tc.lines, lines)
		})
	}
}

func TestLineParserReset(t *testing.T) {
	var parser LineParser
	for _, b := range []byte("partial") {
		parser.Parse(b)
	}
	parser.Reset()
	lr := parser.Parse('\n')
	require.Equal(t, LineResult{Line: "", Complete: true}, lr)
}
