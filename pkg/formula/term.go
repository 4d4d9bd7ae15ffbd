package formula

import (
	"fmt"
	"strconv"
)

// Term values are integer-valued expressions. Every symbol is
// integer-sorted; arrays map integers to integers.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Const is an integer literal.
type Const int64

func (Const) isTerm() {}

func (k Const) String() string {
	if k < 0 {
		return fmt.Sprintf("(- %d)", -int64(k))
	}
	return strconv.FormatInt(int64(k), 10)
}

// Int returns the constant term with value v.
func Int(v int) Const {
	return Const(v)
}

// Var is an integer-sorted scalar symbol. Within the body of a
// quantifier naming it, a Var refers to the bound variable; elsewhere
// it is a free constant to be chosen by the solver.
type Var struct {
	Name string
}

func (Var) isTerm() {}

func (v Var) String() string {
	return v.Name
}

// IntVar declares an integer-sorted scalar symbol.
func IntVar(name string) Var {
	return Var{Name: name}
}

// Array is an integer-indexed array of integers with an infinite
// domain. Cells never mentioned by a constraint are unconstrained.
type Array struct {
	Name string
}

// IntArray declares an integer-indexed integer array symbol.
func IntArray(name string) Array {
	return Array{Name: name}
}

func (a Array) String() string {
	return a.Name
}

// At returns the term reading the cell of a at index.
func (a Array) At(index Term) Select {
	return Select{Array: a, Index: index}
}

// Select reads one cell of an Array.
type Select struct {
	Array Array
	Index Term
}

func (Select) isTerm() {}

func (s Select) String() string {
	return fmt.Sprintf("(select %s %s)", s.Array, s.Index)
}

// Sum is the integer sum of two terms.
type Sum struct {
	L, R Term
}

func (Sum) isTerm() {}

func (s Sum) String() string {
	return fmt.Sprintf("(+ %s %s)", s.L, s.R)
}

// Plus returns l + r.
func Plus(l, r Term) Sum {
	return Sum{L: l, R: r}
}

// Difference is the integer difference of two terms.
type Difference struct {
	L, R Term
}

func (Difference) isTerm() {}

func (d Difference) String() string {
	return fmt.Sprintf("(- %s %s)", d.L, d.R)
}

// Minus returns l - r.
func Minus(l, r Term) Difference {
	return Difference{L: l, R: r}
}
