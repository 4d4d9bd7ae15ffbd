package solver

import (
	"fmt"

	"github.com/go-air/gini"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

// NotInModel is returned when evaluating a symbol that no assertion
// mentions. Such symbols are unconstrained and have no meaningful
// value.
type NotInModel string

func (e NotInModel) Error() string {
	return fmt.Sprintf("%s is not constrained by any assertion", string(e))
}

type model struct {
	lits *litMapping
	g    *gini.Gini
}

func (m *model) Eval(t formula.Term) (int64, error) {
	switch t := t.(type) {
	case formula.Const:
		return int64(t), nil
	case formula.Var:
		vl, ok := m.lits.scalars[t.Name]
		if !ok {
			return 0, NotInModel(t.Name)
		}
		return m.value(t.Name, vl)
	case formula.Select:
		index, err := m.Eval(t.Index)
		if err != nil {
			return 0, err
		}
		c := cell{array: t.Array.Name, index: index}
		vl, ok := m.lits.cells[c]
		if !ok {
			return 0, NotInModel(c.String())
		}
		return m.value(c.String(), vl)
	case formula.Sum:
		l, err := m.Eval(t.L)
		if err != nil {
			return 0, err
		}
		r, err := m.Eval(t.R)
		if err != nil {
			return 0, err
		}
		return l + r, nil
	case formula.Difference:
		l, err := m.Eval(t.L)
		if err != nil {
			return 0, err
		}
		r, err := m.Eval(t.R)
		if err != nil {
			return 0, err
		}
		return l - r, nil
	}
	return 0, Unsupported{What: fmt.Sprintf("term %T", t)}
}

func (m *model) value(name string, vl valueLits) (int64, error) {
	if v, ok := m.lits.Value(m.g, vl); ok {
		return v, nil
	}
	return 0, fmt.Errorf("model assigns no value to %s", name)
}
