package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestFindOnce(t *testing.T) {
	type tc struct {
		Name     string
		Args     []string
		Expected string
	}

	for _, tt := range []tc{
		{
			Name:     "colorable",
			Args:     []string{"-C", "1", "-N", "1"},
			Expected: "Numbers: 1\nColors:  1\nAssigned Colors: [1]\n",
		},
		{
			Name:     "not colorable",
			Args:     []string{"-C", "1", "-N", "2"},
			Expected: "Numbers: 2\nColors:  1\nAssigned Colors: []\n",
		},
		{
			Name:     "json",
			Args:     []string{"--colors", "1", "--numbers", "1", "-o", "json"},
			Expected: `{"colors":1,"numbers":1,"coloring":[1]}` + "\n",
		},
		{
			Name:     "yaml",
			Args:     []string{"-C", "1", "-N", "2", "--output", "yaml"},
			Expected: "---\ncoloring: []\ncolors: 1\nnumbers: 2\n",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out, err := execute(t, tt.Args...)
			require.NoError(t, err)
			assert.Equal(t, tt.Expected, out)
		})
	}
}

func TestFindOnceErrors(t *testing.T) {
	_, err := execute(t, "-C", "0", "-N", "3")
	assert.EqualError(t, err, "malformed instance: colors=0 numbers=3, both must be positive")

	_, err = execute(t, "-C", "1", "-N", "1", "-o", "xml")
	assert.EqualError(t, err, `unknown output format "xml", must be one of text, yaml or json`)
}

func TestIterate(t *testing.T) {
	out, err := execute(t, "--iterate", "--max-colors", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	for i, prefix := range []string{
		"1 colors with N=1 took ",
		"1 colors with N=2 took ",
		"S(1) = 2",
		"2 colors with N=3 took ",
		"2 colors with N=4 took ",
		"2 colors with N=5 took ",
		"S(2) = 5",
	} {
		assert.True(t, strings.HasPrefix(lines[i], prefix), "line %d is %q", i, lines[i])
	}
	assert.Regexp(t, `^1 colors with N=1 took \d+\.\d{4} seconds$`, lines[0])
}

func TestIterateJSON(t *testing.T) {
	out, err := execute(t, "--iterate", "--max-colors", "1", "-o", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"step":{"colors":1,"numbers":1,`)
	assert.Regexp(t, `"elapsedSeconds":[0-9.e+-]+,"found":true,"coloring":\[1\]`, lines[0])
	assert.Contains(t, lines[1], `"found":false`)
	assert.Equal(t, `{"schurNumber":{"colors":1,"numbers":2}}`, lines[2])
}

func TestIterateWriteFailure(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--iterate", "--max-colors", "1"})
	cmd.SetOut(&brokenWriter{})
	cmd.SetErr(io.Discard)
	assert.EqualError(t, cmd.Execute(), "writing progress: write 1 failed")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "Schur Version:")
}
