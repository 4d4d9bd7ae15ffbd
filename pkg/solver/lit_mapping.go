package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

// cell identifies one element of an array symbol.
type cell struct {
	array string
	index int64
}

func (c cell) String() string {
	return fmt.Sprintf("%s[%d]", c.array, c.index)
}

// valueLits is the one-hot encoding of an integer-valued term: exactly
// one of lits is true in any model, and values[i] is the value of the
// term when lits[i] is.
type valueLits struct {
	values []int64
	lits   []z.Lit
}

type inconsistentLitMapping []error

func (inconsistentLitMapping) Error() string {
	return "internal solver failure"
}

// litMapping performs translation between formulas and the variables
// that appear in the SAT formula. Scalars and array cells each receive
// one literal per value in their domain.
type litMapping struct {
	c         *logic.C
	scalars   map[string]valueLits
	cells     map[cell]valueLits
	roots     []z.Lit
	instances int
	values    int
	// truncated is set when an unbounded cell takes part in
	// arithmetic, where its finite range may exclude every solution.
	truncated bool
	errs      inconsistentLitMapping
}

// newLitMapping grounds the provided assertions, assigns a finite
// domain to every symbol they mention and builds the circuit whose
// roots must all hold.
func newLitMapping(assertions []formula.Formula) (*litMapping, error) {
	var g grounder
	var ground []formula.Formula
	for _, a := range assertions {
		f, err := g.ground(a, env{})
		if err != nil {
			return nil, err
		}
		ground = append(ground, formula.Conjuncts(f)...)
	}

	d := litMapping{
		c:         logic.NewC(),
		scalars:   make(map[string]valueLits),
		cells:     make(map[cell]valueLits),
		instances: g.instances,
	}
	if err := d.declare(ground); err != nil {
		return nil, err
	}
	for _, f := range ground {
		m, err := d.encode(f)
		if err != nil {
			return nil, err
		}
		d.roots = append(d.roots, m)
	}
	return &d, nil
}

// declare derives a domain for every scalar and cell mentioned by the
// ground formulas. Domains come from comparisons against constants in
// the top-level conjunction. Scalars without both bounds are an error;
// cells without bounds receive a range covering every constant in the
// problem, widened by the number of such cells so that each can still
// take a distinct value. That range is not exhaustive once such a cell
// is compared through arithmetic, and d.truncated records it.
func (d *litMapping) declare(ground []formula.Formula) error {
	scalarBounds := make(map[string]*interval)
	cellBounds := make(map[cell]*interval)
	for _, f := range ground {
		cmp, ok := f.(formula.Comparison)
		if !ok {
			continue
		}
		op, sym, k, ok := normalize(cmp)
		if !ok {
			continue
		}
		switch sym := sym.(type) {
		case formula.Var:
			iv, ok := scalarBounds[sym.Name]
			if !ok {
				iv = &interval{}
				scalarBounds[sym.Name] = iv
			}
			iv.apply(op, k)
		case formula.Select:
			c := cell{array: sym.Array.Name, index: int64(sym.Index.(formula.Const))}
			iv, ok := cellBounds[c]
			if !ok {
				iv = &interval{}
				cellBounds[c] = iv
			}
			iv.apply(op, k)
		}
	}

	var (
		scalars []string
		seen    = make(map[string]struct{})
		selects []formula.Select
	)
	for _, f := range ground {
		walkTerms(f, func(t formula.Term) {
			switch t := t.(type) {
			case formula.Var:
				if _, ok := seen[t.Name]; !ok {
					seen[t.Name] = struct{}{}
					scalars = append(scalars, t.Name)
				}
			case formula.Select:
				selects = append(selects, t)
			}
		})
	}

	// lo and hi span every constant and every declared bound.
	var (
		lo, hi  int64
		spanned bool
	)
	widen := func(x int64) {
		if !spanned || x < lo {
			lo = x
		}
		if !spanned || x > hi {
			hi = x
		}
		spanned = true
	}
	for _, f := range ground {
		walkTerms(f, func(t formula.Term) {
			if k, ok := t.(formula.Const); ok {
				widen(int64(k))
			}
		})
	}

	for _, name := range scalars {
		iv, ok := scalarBounds[name]
		if !ok || !iv.bounded() {
			return UnboundedVariable(name)
		}
		if iv.size() > maxRange {
			return Unsupported{What: fmt.Sprintf("range of %q spans %d values", name, iv.size())}
		}
		widen(iv.lo)
		widen(iv.hi)
		d.scalars[name] = d.allocate(iv.lo, iv.hi)
	}

	var cells []cell
	seenCells := make(map[cell]struct{})
	addCell := func(c cell) {
		if _, ok := seenCells[c]; ok {
			return
		}
		seenCells[c] = struct{}{}
		cells = append(cells, c)
	}
	for _, s := range selects {
		if k, ok := s.Index.(formula.Const); ok {
			addCell(cell{array: s.Array.Name, index: int64(k)})
			continue
		}
		indices, err := d.valuesOf(s.Index)
		if err != nil {
			return err
		}
		for _, i := range indices {
			addCell(cell{array: s.Array.Name, index: i})
		}
	}

	var free int64
	unbounded := make(map[cell]struct{})
	for _, c := range cells {
		iv, ok := cellBounds[c]
		if !ok || !iv.bounded() {
			free++
			unbounded[c] = struct{}{}
		}
		if ok && iv.hasLo {
			widen(iv.lo)
		}
		if ok && iv.hasHi {
			widen(iv.hi)
		}
	}
	lo, hi = lo-free, hi+free

	for _, c := range cells {
		l, h := lo, hi
		if iv, ok := cellBounds[c]; ok {
			if iv.hasLo {
				l = iv.lo
			}
			if iv.hasHi {
				h = iv.hi
			}
		}
		if h-l+1 > maxRange {
			return Unsupported{What: fmt.Sprintf("range of %s spans %d values", c, h-l+1)}
		}
		d.cells[c] = d.allocate(l, h)
	}

	if len(unbounded) == 0 {
		return nil
	}
	var err error
	for _, f := range ground {
		walkComparisons(f, func(cmp formula.Comparison) {
			if err != nil || d.truncated || !(arithmetic(cmp.L) || arithmetic(cmp.R)) {
				return
			}
			for _, t := range []formula.Term{cmp.L, cmp.R} {
				var operands []cell
				operands, err = d.operandCells(t)
				if err != nil {
					return
				}
				for _, c := range operands {
					if _, ok := unbounded[c]; ok {
						d.truncated = true
						return
					}
				}
			}
		})
	}
	return err
}

// arithmetic reports whether t adds or subtracts values. Array indices
// are not considered.
func arithmetic(t formula.Term) bool {
	switch t.(type) {
	case formula.Sum, formula.Difference:
		return true
	}
	return false
}

// operandCells returns every cell whose value t may read. Cells that
// only appear in an index expression are not included.
func (d *litMapping) operandCells(t formula.Term) ([]cell, error) {
	switch t := t.(type) {
	case formula.Select:
		if k, ok := t.Index.(formula.Const); ok {
			return []cell{{array: t.Array.Name, index: int64(k)}}, nil
		}
		indices, err := d.valuesOf(t.Index)
		if err != nil {
			return nil, err
		}
		out := make([]cell, 0, len(indices))
		for _, i := range indices {
			out = append(out, cell{array: t.Array.Name, index: i})
		}
		return out, nil
	case formula.Sum:
		return d.operandPair(t.L, t.R)
	case formula.Difference:
		return d.operandPair(t.L, t.R)
	}
	return nil, nil
}

func (d *litMapping) operandPair(l, r formula.Term) ([]cell, error) {
	lc, err := d.operandCells(l)
	if err != nil {
		return nil, err
	}
	rc, err := d.operandCells(r)
	if err != nil {
		return nil, err
	}
	return append(lc, rc...), nil
}

// normalize rewrites a comparison between a symbol and a constant so
// that the symbol is on the left. Symbols are scalars and array cells
// with constant indices.
func normalize(cmp formula.Comparison) (formula.Op, formula.Term, int64, bool) {
	if k, ok := cmp.R.(formula.Const); ok && isSymbol(cmp.L) {
		return cmp.Op, cmp.L, int64(k), true
	}
	if k, ok := cmp.L.(formula.Const); ok && isSymbol(cmp.R) {
		return cmp.Op.Flip(), cmp.R, int64(k), true
	}
	return 0, nil, 0, false
}

func isSymbol(t formula.Term) bool {
	switch t := t.(type) {
	case formula.Var:
		return true
	case formula.Select:
		_, ok := t.Index.(formula.Const)
		return ok
	}
	return false
}

// walkTerms calls visit for every term and subterm of f.
func walkTerms(f formula.Formula, visit func(formula.Term)) {
	var term func(formula.Term)
	term = func(t formula.Term) {
		visit(t)
		switch t := t.(type) {
		case formula.Select:
			term(t.Index)
		case formula.Sum:
			term(t.L)
			term(t.R)
		case formula.Difference:
			term(t.L)
			term(t.R)
		}
	}
	walkComparisons(f, func(cmp formula.Comparison) {
		term(cmp.L)
		term(cmp.R)
	})
}

// walkComparisons calls visit for every comparison in f.
func walkComparisons(f formula.Formula, visit func(formula.Comparison)) {
	switch f := f.(type) {
	case formula.Comparison:
		visit(f)
	case formula.Conjunction:
		for _, each := range f {
			walkComparisons(each, visit)
		}
	case formula.Disjunction:
		for _, each := range f {
			walkComparisons(each, visit)
		}
	case formula.Negation:
		walkComparisons(f.F, visit)
	case formula.Implication:
		walkComparisons(f.If, visit)
		walkComparisons(f.Then, visit)
	}
}

// valuesOf returns, in ascending order, every value t can take given
// the scalar domains already declared.
func (d *litMapping) valuesOf(t formula.Term) ([]int64, error) {
	switch t := t.(type) {
	case formula.Const:
		return []int64{int64(t)}, nil
	case formula.Var:
		vl, ok := d.scalars[t.Name]
		if !ok {
			return nil, UnboundedVariable(t.Name)
		}
		return vl.values, nil
	case formula.Sum:
		return d.combineValues(t.L, t.R, func(x, y int64) int64 { return x + y })
	case formula.Difference:
		return d.combineValues(t.L, t.R, func(x, y int64) int64 { return x - y })
	case formula.Select:
		return nil, Unsupported{What: fmt.Sprintf("array index %s reads an array", t)}
	}
	return nil, Unsupported{What: fmt.Sprintf("term %T", t)}
}

func (d *litMapping) combineValues(l, r formula.Term, f func(x, y int64) int64) ([]int64, error) {
	lv, err := d.valuesOf(l)
	if err != nil {
		return nil, err
	}
	rv, err := d.valuesOf(r)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(lv)+len(rv))
	for _, x := range lv {
		for _, y := range rv {
			set[f(x, y)] = struct{}{}
		}
	}
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// allocate returns a fresh one-hot encoding over [lo, hi] and records
// the constraint that exactly one of its literals holds. An empty
// range makes the problem unsatisfiable.
func (d *litMapping) allocate(lo, hi int64) valueLits {
	var vl valueLits
	for v := lo; v <= hi; v++ {
		vl.values = append(vl.values, v)
		vl.lits = append(vl.lits, d.c.Lit())
	}
	d.values += len(vl.lits)
	d.roots = append(d.roots, d.exactlyOne(vl.lits))
	return vl
}

func (d *litMapping) exactlyOne(ms []z.Lit) z.Lit {
	atLeast := d.c.Ors(ms...)
	if len(ms) <= 1 {
		return atLeast
	}
	return d.c.And(atLeast, d.c.CardSort(ms).Leq(1))
}

// encodeTerm returns the one-hot encoding of t.
func (d *litMapping) encodeTerm(t formula.Term) (valueLits, error) {
	switch t := t.(type) {
	case formula.Const:
		return valueLits{values: []int64{int64(t)}, lits: []z.Lit{d.c.T}}, nil
	case formula.Var:
		vl, ok := d.scalars[t.Name]
		if !ok {
			d.errs = append(d.errs, fmt.Errorf("scalar %q referenced but not declared", t.Name))
		}
		return vl, nil
	case formula.Select:
		if k, ok := t.Index.(formula.Const); ok {
			return d.cellOf(cell{array: t.Array.Name, index: int64(k)}), nil
		}
		index, err := d.encodeTerm(t.Index)
		if err != nil {
			return valueLits{}, err
		}
		acc := make(map[int64][]z.Lit)
		for i, at := range index.values {
			vl := d.cellOf(cell{array: t.Array.Name, index: at})
			for j, v := range vl.values {
				acc[v] = append(acc[v], d.c.And(index.lits[i], vl.lits[j]))
			}
		}
		return d.collect(acc), nil
	case formula.Sum:
		return d.combine(t.L, t.R, func(x, y int64) int64 { return x + y })
	case formula.Difference:
		return d.combine(t.L, t.R, func(x, y int64) int64 { return x - y })
	}
	return valueLits{}, Unsupported{What: fmt.Sprintf("term %T", t)}
}

// cellOf returns the encoding of c. An undeclared cell is recorded as
// an error and has no possible value.
func (d *litMapping) cellOf(c cell) valueLits {
	vl, ok := d.cells[c]
	if !ok {
		d.errs = append(d.errs, fmt.Errorf("cell %s referenced but not declared", c))
	}
	return vl
}

func (d *litMapping) combine(l, r formula.Term, f func(x, y int64) int64) (valueLits, error) {
	lv, err := d.encodeTerm(l)
	if err != nil {
		return valueLits{}, err
	}
	rv, err := d.encodeTerm(r)
	if err != nil {
		return valueLits{}, err
	}
	acc := make(map[int64][]z.Lit)
	for i, x := range lv.values {
		for j, y := range rv.values {
			v := f(x, y)
			acc[v] = append(acc[v], d.c.And(lv.lits[i], rv.lits[j]))
		}
	}
	return d.collect(acc), nil
}

// collect builds an encoding from the literals implying each value.
func (d *litMapping) collect(acc map[int64][]z.Lit) valueLits {
	var vl valueLits
	for v := range acc {
		vl.values = append(vl.values, v)
	}
	sort.Slice(vl.values, func(i, j int) bool { return vl.values[i] < vl.values[j] })
	for _, v := range vl.values {
		vl.lits = append(vl.lits, d.c.Ors(acc[v]...))
	}
	return vl
}

// encode returns a literal equivalent to the ground formula f.
func (d *litMapping) encode(f formula.Formula) (z.Lit, error) {
	switch f := f.(type) {
	case formula.Literal:
		if f {
			return d.c.T, nil
		}
		return d.c.F, nil
	case formula.Comparison:
		l, err := d.encodeTerm(f.L)
		if err != nil {
			return z.LitNull, err
		}
		r, err := d.encodeTerm(f.R)
		if err != nil {
			return z.LitNull, err
		}
		var ms []z.Lit
		for i, x := range l.values {
			for j, y := range r.values {
				if f.Op.Holds(x, y) {
					ms = append(ms, d.c.And(l.lits[i], r.lits[j]))
				}
			}
		}
		return d.c.Ors(ms...), nil
	case formula.Conjunction:
		ms, err := d.encodeAll(f)
		if err != nil {
			return z.LitNull, err
		}
		return d.c.Ands(ms...), nil
	case formula.Disjunction:
		ms, err := d.encodeAll(f)
		if err != nil {
			return z.LitNull, err
		}
		return d.c.Ors(ms...), nil
	case formula.Negation:
		m, err := d.encode(f.F)
		if err != nil {
			return z.LitNull, err
		}
		return m.Not(), nil
	case formula.Implication:
		a, err := d.encode(f.If)
		if err != nil {
			return z.LitNull, err
		}
		b, err := d.encode(f.Then)
		if err != nil {
			return z.LitNull, err
		}
		return d.c.Implies(a, b), nil
	}
	return z.LitNull, Unsupported{What: fmt.Sprintf("formula %T after grounding", f)}
}

func (d *litMapping) encodeAll(fs []formula.Formula) ([]z.Lit, error) {
	ms := make([]z.Lit, 0, len(fs))
	for _, f := range fs {
		m, err := d.encode(f)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// Stats reports the size of the translation.
func (d *litMapping) Stats() Stats {
	return Stats{
		Instances: d.instances,
		Scalars:   len(d.scalars),
		Cells:     len(d.cells),
		Values:    d.values,
		Gates:     d.c.Len(),
	}
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a litMapping's lifetime, or nil if there
// have been no errors. A non-nil return value likely indicates a
// problem with the translation.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// AddConstraints adds the circuit to the solver g.
func (d *litMapping) AddConstraints(g inter.Adder) {
	d.c.ToCnf(g)
}

// AssumeConstraints assumes every root of the circuit.
func (d *litMapping) AssumeConstraints(s inter.Assumable) {
	s.Assume(d.roots...)
}

// Value returns the value selected for vl by the model of s.
func (d *litMapping) Value(s inter.Model, vl valueLits) (int64, bool) {
	for i, m := range vl.lits {
		if s.Value(m) {
			return vl.values[i], true
		}
	}
	return 0, false
}
