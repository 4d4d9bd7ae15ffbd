package schur

import (
	"github.com/operator-framework/schur-solver/pkg/formula"
)

// Symbols shared by every query. Number i+1 has color A[i].
var (
	colorArray = formula.IntArray("A")
	varA       = formula.IntVar("a")
	varB       = formula.IntVar("b")
	varC       = formula.IntVar("c")
)

// Instance holds the formulas common to every query about colorings of
// 1..Numbers with Colors colors. An Instance is immutable and may be
// shared between queries.
type Instance struct {
	colors, numbers int
	wellFormed      formula.Formula
	tripleDomain    formula.Formula
}

// NewInstance encodes the well-formedness and triple domain
// constraints for the given counts. It does not validate them: with no
// numbers well-formedness is vacuous, and with no colors it cannot be
// met.
func NewInstance(colors, numbers int) *Instance {
	i := formula.IntVar("i")
	return &Instance{
		colors:  colors,
		numbers: numbers,
		wellFormed: formula.ForAll([]formula.Var{i}, formula.Implies(
			formula.And(
				formula.Ge(i, formula.Int(0)),
				formula.Lt(i, formula.Int(numbers)),
			),
			formula.And(
				formula.Ge(colorArray.At(i), formula.Int(1)),
				formula.Le(colorArray.At(i), formula.Int(colors)),
			),
		)),
		tripleDomain: formula.And(
			formula.Ge(varA, formula.Int(1)),
			formula.Le(varA, formula.Int(numbers)),
			formula.Ge(varB, formula.Int(1)),
			formula.Le(varB, formula.Int(numbers)),
			formula.Ge(varC, formula.Int(1)),
			formula.Le(varC, formula.Int(numbers)),
			formula.Eq(formula.Plus(varA, varB), varC),
		),
	}
}

func (in *Instance) Colors() int {
	return in.colors
}

func (in *Instance) Numbers() int {
	return in.numbers
}

// WellFormed requires every number to have a color in 1..Colors.
func (in *Instance) WellFormed() formula.Formula {
	return in.wellFormed
}

// TripleDomain holds when a, b and c lie in 1..Numbers and a+b=c.
func (in *Instance) TripleDomain() formula.Formula {
	return in.tripleDomain
}

// colorOf is the color of number n.
func colorOf(n formula.Term) formula.Term {
	return colorArray.At(formula.Minus(n, formula.Int(1)))
}

// NoMonochromaticTriple holds when no triple in the domain has a single
// color.
func (in *Instance) NoMonochromaticTriple() formula.Formula {
	return formula.ForAll([]formula.Var{varA, varB, varC}, formula.Implies(
		in.tripleDomain,
		formula.Or(
			formula.Ne(colorOf(varA), colorOf(varB)),
			formula.Ne(colorOf(varB), colorOf(varC)),
		),
	))
}

// MonochromaticTriple holds when a, b and c, read as free symbols, form
// a triple in the domain with a single color.
func (in *Instance) MonochromaticTriple() formula.Formula {
	return formula.And(
		in.tripleDomain,
		formula.Eq(colorOf(varA), colorOf(varB)),
		formula.Eq(colorOf(varB), colorOf(varC)),
	)
}

// Pin fixes the color of every number to the one in coloring.
func (in *Instance) Pin(coloring Coloring) []formula.Formula {
	fs := make([]formula.Formula, len(coloring))
	for i, color := range coloring {
		fs[i] = formula.Eq(colorArray.At(formula.Int(i)), formula.Int(color))
	}
	return fs
}
