// Package schur searches for and verifies colorings of the integers
// 1..N that avoid monochromatic solutions to a+b=c, and drives the
// open-ended search for Schur numbers.
package schur

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Coloring assigns a color in [1, C] to every number in 1..N. The
// color of number i+1 is Coloring[i].
type Coloring []int

func (c Coloring) String() string {
	s := make([]string, len(c))
	for i, color := range c {
		s[i] = strconv.Itoa(color)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// ParseColoring reads a coloring written as comma-separated colors,
// with or without surrounding brackets.
func ParseColoring(s string) (Coloring, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return Coloring{}, nil
	}
	var c Coloring
	for _, field := range strings.Split(s, ",") {
		color, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, MalformedCandidate{Reason: fmt.Sprintf("%q is not a color", strings.TrimSpace(field))}
		}
		c = append(c, color)
	}
	return c, nil
}

// Triple is a solution to a+b=c with every element in 1..N.
type Triple struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

func (t Triple) String() string {
	return fmt.Sprintf("a=%d, b=%d, c=%d", t.A, t.B, t.C)
}

// Verdict is the outcome of verifying a candidate coloring. An invalid
// coloring carries a monochromatic triple as evidence.
type Verdict struct {
	Valid          bool    `json:"valid"`
	Counterexample *Triple `json:"counterexample,omitempty"`
}

// Indeterminate is returned, wrapped, when the solver gives up before
// deciding a query.
var Indeterminate = errors.New("solver could not decide the query")

// NoValidColoring is returned when every coloring of 1..Numbers with
// Colors colors contains a monochromatic triple.
type NoValidColoring struct {
	Colors  int
	Numbers int
}

func (e NoValidColoring) Error() string {
	return fmt.Sprintf("no valid coloring of 1..%d with %d colors", e.Numbers, e.Colors)
}

// MalformedInstance is returned for a non-positive color or number
// count.
type MalformedInstance struct {
	Colors  int
	Numbers int
}

func (e MalformedInstance) Error() string {
	return fmt.Sprintf("malformed instance: colors=%d numbers=%d, both must be positive", e.Colors, e.Numbers)
}

type MalformedCandidate struct {
	Reason string
}

func (e MalformedCandidate) Error() string {
	return fmt.Sprintf("malformed candidate coloring: %s", e.Reason)
}

func validateInstance(colors, numbers int) error {
	if colors <= 0 || numbers <= 0 {
		return MalformedInstance{Colors: colors, Numbers: numbers}
	}
	return nil
}

func validateCandidate(colors, numbers int, coloring Coloring) error {
	if len(coloring) != numbers {
		return MalformedCandidate{Reason: fmt.Sprintf("%d colors given for %d numbers", len(coloring), numbers)}
	}
	for i, color := range coloring {
		if color < 1 || color > colors {
			return MalformedCandidate{Reason: fmt.Sprintf("number %d has color %d outside 1..%d", i+1, color, colors)}
		}
	}
	return nil
}
