// Package formula provides an abstract syntax for quantified integer
// constraints. Values built here are plain data: they are rendered or
// translated by a solver, never evaluated by this package.
package formula

import (
	"fmt"
	"strings"
)

// Formula values are boolean-valued constraints over Terms.
type Formula interface {
	fmt.Stringer
	isFormula()
}

// Op identifies the relation of a Comparison.
type Op int

const (
	EQ Op = iota
	NE
	LT
	LE
	GT
	GE
)

var opNames = [...]string{
	EQ: "=",
	NE: "distinct",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Holds reports whether l o r.
func (o Op) Holds(l, r int64) bool {
	switch o {
	case EQ:
		return l == r
	case NE:
		return l != r
	case LT:
		return l < r
	case LE:
		return l <= r
	case GT:
		return l > r
	case GE:
		return l >= r
	}
	return false
}

// Flip returns the relation obtained by swapping the operands, so that
// "l o r" is equivalent to "r o.Flip() l".
func (o Op) Flip() Op {
	switch o {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	}
	return o
}

// Comparison relates two terms.
type Comparison struct {
	Op   Op
	L, R Term
}

func (Comparison) isFormula() {}

func (c Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Op, c.L, c.R)
}

func Eq(l, r Term) Comparison { return Comparison{Op: EQ, L: l, R: r} }
func Ne(l, r Term) Comparison { return Comparison{Op: NE, L: l, R: r} }
func Lt(l, r Term) Comparison { return Comparison{Op: LT, L: l, R: r} }
func Le(l, r Term) Comparison { return Comparison{Op: LE, L: l, R: r} }
func Gt(l, r Term) Comparison { return Comparison{Op: GT, L: l, R: r} }
func Ge(l, r Term) Comparison { return Comparison{Op: GE, L: l, R: r} }

// Literal is a boolean constant.
type Literal bool

func (Literal) isFormula() {}

func (l Literal) String() string {
	if l {
		return "true"
	}
	return "false"
}

const (
	True  = Literal(true)
	False = Literal(false)
)

// Conjunction holds when every operand holds. An empty Conjunction is
// true.
type Conjunction []Formula

func (Conjunction) isFormula() {}

func (c Conjunction) String() string {
	return nary("and", c)
}

// And returns the conjunction of fs.
func And(fs ...Formula) Conjunction {
	return Conjunction(fs)
}

// Disjunction holds when at least one operand holds. An empty
// Disjunction is false.
type Disjunction []Formula

func (Disjunction) isFormula() {}

func (d Disjunction) String() string {
	return nary("or", d)
}

// Or returns the disjunction of fs.
func Or(fs ...Formula) Disjunction {
	return Disjunction(fs)
}

// Negation holds when its operand does not.
type Negation struct {
	F Formula
}

func (Negation) isFormula() {}

func (n Negation) String() string {
	return fmt.Sprintf("(not %s)", n.F)
}

// Not returns the negation of f.
func Not(f Formula) Negation {
	return Negation{F: f}
}

// Implication holds when If does not hold or Then holds.
type Implication struct {
	If, Then Formula
}

func (Implication) isFormula() {}

func (i Implication) String() string {
	return fmt.Sprintf("(=> %s %s)", i.If, i.Then)
}

// Implies returns the implication from antecedent to consequent.
func Implies(antecedent, consequent Formula) Implication {
	return Implication{If: antecedent, Then: consequent}
}

// Quantifier distinguishes universal from existential quantification.
type Quantifier int

const (
	Universal Quantifier = iota
	Existential
)

func (q Quantifier) String() string {
	if q == Existential {
		return "exists"
	}
	return "forall"
}

// Quantified binds Vars within Body.
type Quantified struct {
	Quantifier Quantifier
	Vars       []Var
	Body       Formula
}

func (Quantified) isFormula() {}

func (q Quantified) String() string {
	s := make([]string, len(q.Vars))
	for i, v := range q.Vars {
		s[i] = fmt.Sprintf("(%s Int)", v)
	}
	return fmt.Sprintf("(%s (%s) %s)", q.Quantifier, strings.Join(s, " "), q.Body)
}

// ForAll returns a universally quantified formula binding vars in body.
func ForAll(vars []Var, body Formula) Quantified {
	return Quantified{Quantifier: Universal, Vars: vars, Body: body}
}

// Exists returns an existentially quantified formula binding vars in
// body.
func Exists(vars []Var, body Formula) Quantified {
	return Quantified{Quantifier: Existential, Vars: vars, Body: body}
}

func nary(name string, fs []Formula) string {
	if len(fs) == 0 {
		if name == "and" {
			return "true"
		}
		return "false"
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, f := range fs {
		b.WriteString(" ")
		b.WriteString(f.String())
	}
	b.WriteString(")")
	return b.String()
}

// Conjuncts flattens nested Conjunctions of f into a single list of
// operands. Formulas other than Conjunction are returned as the only
// element.
func Conjuncts(f Formula) []Formula {
	var out []Formula
	var walk func(Formula)
	walk = func(f Formula) {
		if c, ok := f.(Conjunction); ok {
			for _, each := range c {
				walk(each)
			}
			return
		}
		out = append(out, f)
	}
	walk(f)
	return out
}
