package schur

import (
	"github.com/pkg/errors"

	"github.com/operator-framework/schur-solver/pkg/formula"
	"github.com/operator-framework/schur-solver/pkg/solver"
)

// extractColoring reads the color of every number in 1..Numbers from m.
func (in *Instance) extractColoring(m solver.Model) (Coloring, error) {
	coloring := make(Coloring, in.numbers)
	for i := range coloring {
		v, err := m.Eval(colorArray.At(formula.Int(i)))
		if err != nil {
			return nil, errors.Wrapf(err, "reading color of %d", i+1)
		}
		coloring[i] = int(v)
	}
	return coloring, nil
}

// extractTriple reads the witness bound to a, b and c in m.
func extractTriple(m solver.Model) (Triple, error) {
	var values [3]int
	for i, v := range []formula.Var{varA, varB, varC} {
		x, err := m.Eval(v)
		if err != nil {
			return Triple{}, errors.Wrapf(err, "reading %s", v)
		}
		values[i] = int(x)
	}
	return Triple{A: values[0], B: values[1], C: values[2]}, nil
}
