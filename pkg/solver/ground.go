package solver

import (
	"fmt"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

// env binds quantified variables to values during grounding.
type env map[string]int64

func (e env) with(name string, v int64) env {
	out := make(env, len(e)+1)
	for k, x := range e {
		out[k] = x
	}
	out[name] = v
	return out
}

func (e env) without(vars []formula.Var) env {
	shadowed := false
	for _, v := range vars {
		if _, ok := e[v.Name]; ok {
			shadowed = true
			break
		}
	}
	if !shadowed {
		return e
	}
	out := make(env, len(e))
	for k, x := range e {
		out[k] = x
	}
	for _, v := range vars {
		delete(out, v.Name)
	}
	return out
}

// interval accumulates the bounds implied by comparisons against
// constants.
type interval struct {
	lo, hi       int64
	hasLo, hasHi bool
}

func (iv *interval) apply(op formula.Op, k int64) {
	switch op {
	case formula.EQ:
		iv.raise(k)
		iv.lower(k)
	case formula.GE:
		iv.raise(k)
	case formula.GT:
		iv.raise(k + 1)
	case formula.LE:
		iv.lower(k)
	case formula.LT:
		iv.lower(k - 1)
	}
}

func (iv *interval) raise(k int64) {
	if !iv.hasLo || k > iv.lo {
		iv.lo = k
	}
	iv.hasLo = true
}

func (iv *interval) lower(k int64) {
	if !iv.hasHi || k < iv.hi {
		iv.hi = k
	}
	iv.hasHi = true
}

func (iv interval) bounded() bool {
	return iv.hasLo && iv.hasHi
}

// size returns the number of integers in the interval, or -1 if it is
// unbounded.
func (iv interval) size() int64 {
	if !iv.bounded() {
		return -1
	}
	if iv.hi < iv.lo {
		return 0
	}
	return iv.hi - iv.lo + 1
}

// maxRange caps the number of values a single variable or cell may
// take.
const maxRange = 1 << 16

// evaluate returns the value of t if it mentions no free symbols under
// e.
func evaluate(t formula.Term, e env) (int64, bool) {
	switch t := t.(type) {
	case formula.Const:
		return int64(t), true
	case formula.Var:
		v, ok := e[t.Name]
		return v, ok
	case formula.Sum:
		l, ok := evaluate(t.L, e)
		if !ok {
			return 0, false
		}
		r, ok := evaluate(t.R, e)
		return l + r, ok
	case formula.Difference:
		l, ok := evaluate(t.L, e)
		if !ok {
			return 0, false
		}
		r, ok := evaluate(t.R, e)
		return l - r, ok
	}
	return 0, false
}

// substitute replaces bound variables in t with their values and folds
// constant arithmetic.
func substitute(t formula.Term, e env) (formula.Term, error) {
	switch t := t.(type) {
	case formula.Const:
		return t, nil
	case formula.Var:
		if v, ok := e[t.Name]; ok {
			return formula.Const(v), nil
		}
		return t, nil
	case formula.Select:
		index, err := substitute(t.Index, e)
		if err != nil {
			return nil, err
		}
		return formula.Select{Array: t.Array, Index: index}, nil
	case formula.Sum:
		l, r, err := substitutePair(t.L, t.R, e)
		if err != nil {
			return nil, err
		}
		if lk, ok := l.(formula.Const); ok {
			if rk, ok := r.(formula.Const); ok {
				return lk + rk, nil
			}
		}
		return formula.Sum{L: l, R: r}, nil
	case formula.Difference:
		l, r, err := substitutePair(t.L, t.R, e)
		if err != nil {
			return nil, err
		}
		if lk, ok := l.(formula.Const); ok {
			if rk, ok := r.(formula.Const); ok {
				return lk - rk, nil
			}
		}
		return formula.Difference{L: l, R: r}, nil
	}
	return nil, Unsupported{What: fmt.Sprintf("term %T", t)}
}

func substitutePair(l, r formula.Term, e env) (formula.Term, formula.Term, error) {
	sl, err := substitute(l, e)
	if err != nil {
		return nil, nil, err
	}
	sr, err := substitute(r, e)
	if err != nil {
		return nil, nil, err
	}
	return sl, sr, nil
}

// grounder expands quantifiers over finite ranges and simplifies the
// result. The formulas it returns contain no Quantified nodes and no
// bound variables.
type grounder struct {
	instances int
}

func (g *grounder) ground(f formula.Formula, e env) (formula.Formula, error) {
	switch f := f.(type) {
	case formula.Literal:
		return f, nil
	case formula.Comparison:
		l, r, err := substitutePair(f.L, f.R, e)
		if err != nil {
			return nil, err
		}
		if lk, ok := l.(formula.Const); ok {
			if rk, ok := r.(formula.Const); ok {
				return formula.Literal(f.Op.Holds(int64(lk), int64(rk))), nil
			}
		}
		return formula.Comparison{Op: f.Op, L: l, R: r}, nil
	case formula.Conjunction:
		parts := make([]formula.Formula, 0, len(f))
		for _, each := range f {
			x, err := g.ground(each, e)
			if err != nil {
				return nil, err
			}
			parts = append(parts, x)
		}
		return conjoin(parts), nil
	case formula.Disjunction:
		parts := make([]formula.Formula, 0, len(f))
		for _, each := range f {
			x, err := g.ground(each, e)
			if err != nil {
				return nil, err
			}
			parts = append(parts, x)
		}
		return disjoin(parts), nil
	case formula.Negation:
		x, err := g.ground(f.F, e)
		if err != nil {
			return nil, err
		}
		return negate(x), nil
	case formula.Implication:
		antecedent, err := g.ground(f.If, e)
		if err != nil {
			return nil, err
		}
		if antecedent == formula.False {
			return formula.True, nil
		}
		consequent, err := g.ground(f.Then, e)
		if err != nil {
			return nil, err
		}
		return disjoin([]formula.Formula{negate(antecedent), consequent}), nil
	case formula.Quantified:
		return g.quantify(f.Quantifier, f.Vars, f.Body, e.without(f.Vars))
	}
	return nil, Unsupported{What: fmt.Sprintf("formula %T", f)}
}

// quantify binds vars one at a time. The range of each variable is
// derived from the guard after the preceding variables have been
// bound, so equalities such as a+b = c pin later variables to a single
// value.
func (g *grounder) quantify(q formula.Quantifier, vars []formula.Var, body formula.Formula, e env) (formula.Formula, error) {
	if len(vars) == 0 {
		g.instances++
		return g.ground(body, e)
	}

	v := vars[0]
	guard, ok := guardOf(q, body)
	if !ok {
		return nil, UnboundedVariable(v.Name)
	}
	iv := rangeOf(v, guard, e)
	if !iv.bounded() {
		return nil, UnboundedVariable(v.Name)
	}
	if iv.size() > maxRange {
		return nil, Unsupported{What: fmt.Sprintf("range of %q spans %d values", v.Name, iv.size())}
	}

	var parts []formula.Formula
	for i := int64(0); i < iv.size(); i++ {
		x := iv.lo + i
		f, err := g.quantify(q, vars[1:], body, e.with(v.Name, x))
		if err != nil {
			return nil, err
		}
		if l, ok := f.(formula.Literal); ok {
			if q == formula.Universal && !bool(l) {
				return formula.False, nil
			}
			if q == formula.Existential && bool(l) {
				return formula.True, nil
			}
			continue
		}
		parts = append(parts, f)
	}
	if q == formula.Existential {
		return disjoin(parts), nil
	}
	return conjoin(parts), nil
}

// guardOf returns the formula whose conjuncts restrict the range of a
// quantified variable: the antecedent of a universal implication, or
// the body of an existential.
func guardOf(q formula.Quantifier, body formula.Formula) (formula.Formula, bool) {
	switch q {
	case formula.Universal:
		if i, ok := body.(formula.Implication); ok {
			return i.If, true
		}
		return nil, false
	case formula.Existential:
		if _, ok := body.(formula.Implication); ok {
			return nil, false
		}
		return body, true
	}
	return nil, false
}

// rangeOf collects the bounds on v stated by top-level comparisons in
// guard whose other operand is constant under e.
func rangeOf(v formula.Var, guard formula.Formula, e env) interval {
	var iv interval
	for _, c := range formula.Conjuncts(guard) {
		cmp, ok := c.(formula.Comparison)
		if !ok {
			continue
		}
		if x, ok := cmp.L.(formula.Var); ok && x.Name == v.Name {
			if k, ok := evaluate(cmp.R, e); ok {
				iv.apply(cmp.Op, k)
			}
			continue
		}
		if x, ok := cmp.R.(formula.Var); ok && x.Name == v.Name {
			if k, ok := evaluate(cmp.L, e); ok {
				iv.apply(cmp.Op.Flip(), k)
			}
		}
	}
	return iv
}

func conjoin(fs []formula.Formula) formula.Formula {
	out := make(formula.Conjunction, 0, len(fs))
	for _, f := range fs {
		switch f := f.(type) {
		case formula.Literal:
			if !f {
				return formula.False
			}
		case formula.Conjunction:
			out = append(out, f...)
		default:
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return formula.True
	case 1:
		return out[0]
	}
	return out
}

func disjoin(fs []formula.Formula) formula.Formula {
	out := make(formula.Disjunction, 0, len(fs))
	for _, f := range fs {
		switch f := f.(type) {
		case formula.Literal:
			if f {
				return formula.True
			}
		case formula.Disjunction:
			out = append(out, f...)
		default:
			out = append(out, f)
		}
	}
	switch len(out) {
	case 0:
		return formula.False
	case 1:
		return out[0]
	}
	return out
}

func negate(f formula.Formula) formula.Formula {
	switch f := f.(type) {
	case formula.Literal:
		return !f
	case formula.Negation:
		return f.F
	case formula.Comparison:
		switch f.Op {
		case formula.EQ:
			return formula.Comparison{Op: formula.NE, L: f.L, R: f.R}
		case formula.NE:
			return formula.Comparison{Op: formula.EQ, L: f.L, R: f.R}
		}
	}
	return formula.Negation{F: f}
}
