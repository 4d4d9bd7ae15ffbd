package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

func TestInterval(t *testing.T) {
	type tc struct {
		Name string
		Ops  []formula.Op
		Ks   []int64
		Size int64
	}

	for _, tt := range []tc{
		{Name: "unbounded", Size: -1},
		{Name: "lower only", Ops: []formula.Op{formula.GE}, Ks: []int64{1}, Size: -1},
		{Name: "closed", Ops: []formula.Op{formula.GE, formula.LE}, Ks: []int64{1, 4}, Size: 4},
		{Name: "half open", Ops: []formula.Op{formula.GE, formula.LT}, Ks: []int64{0, 4}, Size: 4},
		{Name: "strict", Ops: []formula.Op{formula.GT, formula.LT}, Ks: []int64{0, 4}, Size: 3},
		{Name: "pinned", Ops: []formula.Op{formula.GE, formula.EQ}, Ks: []int64{1, 3}, Size: 1},
		{Name: "empty", Ops: []formula.Op{formula.GE, formula.LE}, Ks: []int64{5, 4}, Size: 0},
		{Name: "tightest bound wins", Ops: []formula.Op{formula.LE, formula.LE, formula.GE}, Ks: []int64{9, 2, 1}, Size: 2},
		{Name: "distinct ignored", Ops: []formula.Op{formula.NE, formula.GE, formula.LE}, Ks: []int64{2, 1, 3}, Size: 3},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			var iv interval
			for i, op := range tt.Ops {
				iv.apply(op, tt.Ks[i])
			}
			assert.Equal(t, tt.Size, iv.size())
		})
	}
}

func TestGroundTripleQuantifier(t *testing.T) {
	a, b, c := formula.IntVar("a"), formula.IntVar("b"), formula.IntVar("c")
	domain := formula.And(
		between(a, 1, 4),
		between(b, 1, 4),
		between(c, 1, 4),
		formula.Eq(formula.Plus(a, b), c),
	)
	f := formula.ForAll([]formula.Var{a, b, c}, formula.Implies(
		domain,
		formula.Ne(A.At(formula.Minus(a, formula.Int(1))), A.At(formula.Minus(c, formula.Int(1)))),
	))

	var g grounder
	ground, err := g.ground(f, env{})
	require.NoError(t, err)

	// Pairs with a+b <= 4, each pinning c.
	assert.Equal(t, 6, g.instances)
	assert.Equal(t, []formula.Formula{
		formula.Ne(A.At(formula.Int(0)), A.At(formula.Int(1))),
		formula.Ne(A.At(formula.Int(0)), A.At(formula.Int(2))),
		formula.Ne(A.At(formula.Int(0)), A.At(formula.Int(3))),
		formula.Ne(A.At(formula.Int(1)), A.At(formula.Int(2))),
		formula.Ne(A.At(formula.Int(1)), A.At(formula.Int(3))),
		formula.Ne(A.At(formula.Int(2)), A.At(formula.Int(3))),
	}, formula.Conjuncts(ground))
}

func TestGroundShadowing(t *testing.T) {
	// The inner quantifier rebinds i.
	inner := formula.Exists([]formula.Var{i}, formula.And(between(i, 5, 5), formula.Eq(A.At(i), formula.Int(1))))
	f := formula.ForAll([]formula.Var{i}, formula.Implies(between(i, 0, 1), inner))

	var g grounder
	ground, err := g.ground(f, env{})
	require.NoError(t, err)
	assert.Equal(t, formula.Formula(formula.Conjunction{
		formula.Eq(A.At(formula.Int(5)), formula.Int(1)),
		formula.Eq(A.At(formula.Int(5)), formula.Int(1)),
	}), ground)
}

func TestGroundFoldsConstants(t *testing.T) {
	var g grounder
	f, err := g.ground(formula.Implies(formula.Lt(formula.Int(3), formula.Int(2)), formula.False), env{})
	require.NoError(t, err)
	assert.Equal(t, formula.Formula(formula.True), f)

	f, err = g.ground(formula.Not(formula.Eq(formula.Plus(formula.Int(1), formula.Int(1)), formula.Int(2))), env{})
	require.NoError(t, err)
	assert.Equal(t, formula.Formula(formula.False), f)

	f, err = g.ground(formula.Not(formula.Eq(x, formula.Int(2))), env{})
	require.NoError(t, err)
	assert.Equal(t, formula.Formula(formula.Ne(x, formula.Int(2))), f)
}
