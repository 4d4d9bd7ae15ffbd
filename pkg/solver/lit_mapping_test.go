package solver

import (
	"testing"

	"github.com/go-air/gini/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

func TestTruncatedDomains(t *testing.T) {
	type tc struct {
		Name      string
		Formulas  []formula.Formula
		Truncated bool
	}

	for _, tt := range []tc{
		{
			Name: "ordering among unbounded cells",
			Formulas: []formula.Formula{
				formula.Ne(A.At(formula.Int(0)), A.At(formula.Int(1))),
				formula.Lt(A.At(formula.Int(1)), formula.Int(7)),
			},
		},
		{
			Name: "offset on unbounded cell",
			Formulas: []formula.Formula{
				formula.Eq(A.At(formula.Int(0)), formula.Plus(A.At(formula.Int(1)), formula.Int(1))),
			},
			Truncated: true,
		},
		{
			Name: "offset on bounded cells",
			Formulas: []formula.Formula{
				between(A.At(formula.Int(0)), 0, 3),
				between(A.At(formula.Int(1)), 0, 3),
				formula.Eq(A.At(formula.Int(0)), formula.Plus(A.At(formula.Int(1)), formula.Int(1))),
			},
		},
		{
			Name: "offset inside index only",
			Formulas: []formula.Formula{
				between(x, 1, 2),
				formula.Eq(A.At(formula.Minus(x, formula.Int(1))), formula.Int(0)),
			},
		},
		{
			Name: "offset against unbounded dynamic cell",
			Formulas: []formula.Formula{
				between(x, 1, 2),
				formula.Ne(A.At(formula.Minus(x, formula.Int(1))), formula.Plus(x, formula.Int(3))),
			},
			Truncated: true,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			d, err := newLitMapping(tt.Formulas)
			require.NoError(t, err)
			assert.Equal(t, tt.Truncated, d.truncated)
		})
	}
}

func TestLitMappingRecordsUndeclaredSymbols(t *testing.T) {
	d := litMapping{
		c:       logic.NewC(),
		scalars: make(map[string]valueLits),
		cells:   make(map[cell]valueLits),
	}
	assert.NoError(t, d.Error())

	_, err := d.encode(formula.Eq(A.At(formula.Int(4)), x))
	require.NoError(t, err)
	assert.EqualError(t, d.Error(), `2 errors encountered: cell A[4] referenced but not declared, scalar "x" referenced but not declared`)
}
