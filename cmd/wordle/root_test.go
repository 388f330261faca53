package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeWords(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExecute_PrintsMatchesAndSummary(t *testing.T) {
	list := writeWords(t, "prose", "crabs", "drove", "proxy", "arose")

	code, stdout, stderr := runCLI(t, "-k", "e", "-l", list, "-c", "5", "-p", "_ro__", "-x", "a")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Equal(t, []string{"prose", "drove"}, lines[:2])
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[2], "total time to find 2 word(s): "), lines[2])
	require.True(t, strings.HasSuffix(lines[2], " Seconds"), lines[2])
	require.Empty(t, stderr)
}

func TestExecute_Workers(t *testing.T) {
	list := writeWords(t, "bare", "bbbb", "abba", "cafe")

	code, stdout, _ := runCLI(t, "-c", "4", "-k", "ab", "-l", list, "-w", "4")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "bare\nabba\ntotal time to find 2 word(s)"), stdout)
}

func TestExecute_ConfigurationErrors(t *testing.T) {
	list := writeWords(t, "prose")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing list", []string{"-c", "5"}, "missing wordlist"},
		{"missing count", []string{"-l", list}, "no or 0 count entered"},
		{"count not a number", []string{"-c", "five", "-l", list}, "invalid argument"},
		{"count too large", []string{"-c", "17", "-l", list}, "greater than 16"},
		{"pattern length mismatch", []string{"-c", "5", "-p", "_ro_", "-l", list}, "does not match char-count"},
		{"unknown flag", []string{"-c", "5", "-l", list, "-z"}, "unknown shorthand flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			require.Equal(t, 1, code)
			require.Empty(t, stdout)
			require.Contains(t, stderr, tt.wantErr)
			require.Contains(t, stderr, "Usage:")
		})
	}
}

func TestExecute_MissingListFile(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-c", "5", "-l", filepath.Join(t.TempDir(), "nope.txt"))
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "couldn't open wordlist file")
	require.NotContains(t, stderr, "Usage:")
}

func TestExecute_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "-h")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "-p, --pattern")
	require.NotContains(t, stdout, "total time")
}

func TestExecute_EnvironmentFallback(t *testing.T) {
	list := writeWords(t, "fox", "cat")
	t.Setenv("WORDFILTER_LIST", list)
	t.Setenv("WORDFILTER_EXCLUDE", "xyz")

	code, stdout, stderr := runCLI(t, "-c", "3")
	require.Equal(t, 0, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "cat\ntotal time to find 1 word(s)"), stdout)
}

func TestExecute_DebugLogsConstraints(t *testing.T) {
	list := writeWords(t, "fox")

	code, _, stderr := runCLI(t, "-c", "3", "-l", list, "--debug")
	require.Equal(t, 0, code)
	require.Contains(t, stderr, "word_len: 3")
}

func TestExecute_WarnsUnsatisfiable(t *testing.T) {
	list := writeWords(t, "prose", "drove")

	code, stdout, stderr := runCLI(t, "-c", "5", "-p", "_ro__", "-k", "aeiu", "-l", list)
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "total time to find 0 word(s)"), stdout)
	require.Contains(t, stderr, "no word can satisfy the constraints")
	require.Contains(t, stderr, "aeiu")
}
