package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"

	"github.com/operator-framework/schur-solver/pkg/formula"
)

// Result is the outcome of a call to Check.
type Result int

const (
	Unknown       Result = 0
	Satisfiable   Result = 1
	Unsatisfiable Result = -1
)

func (r Result) String() string {
	switch r {
	case Satisfiable:
		return "sat"
	case Unsatisfiable:
		return "unsat"
	}
	return "unknown"
}

// ErrNoModel is returned by Model unless the most recent call to
// Check was satisfiable.
var ErrNoModel = errors.New("no model available: last check was not satisfiable")

// UnboundedVariable is returned when a quantified variable or free
// scalar has no finite range that can be derived from the constraints
// guarding it.
type UnboundedVariable string

func (e UnboundedVariable) Error() string {
	return fmt.Sprintf("variable %q has no finite range", string(e))
}

// Unsupported is returned for formulas outside the fragment this
// package can translate.
type Unsupported struct {
	What string
}

func (e Unsupported) Error() string {
	return fmt.Sprintf("unsupported constraint: %s", e.What)
}

//go:generate go run github.com/golang/mock/mockgen -destination=solverfakes/mock_solver.go -package=solverfakes . Solver,Model

// Solver accumulates constraints and decides their satisfiability.
type Solver interface {
	// Add asserts each of fs.
	Add(fs ...formula.Formula)
	// Check decides the conjunction of all asserted constraints. A
	// Context that is done before the answer is known yields
	// Unknown, as does a refutation that relied on a finite range
	// chosen for an unbounded array cell under arithmetic.
	Check(ctx context.Context) (Result, error)
	// Model returns the witness found by the most recent
	// satisfiable Check.
	Model() (Model, error)
}

// Model evaluates terms under a satisfying assignment.
type Model interface {
	Eval(t formula.Term) (int64, error)
}

type solver struct {
	assertions []formula.Formula
	tracer     Tracer
	model      *model
}

const pollInterval = 10 * time.Millisecond

func (s *solver) Add(fs ...formula.Formula) {
	s.assertions = append(s.assertions, fs...)
}

// Check grounds every assertion, translates the result into a boolean
// circuit and hands its CNF to a fresh gini instance.
func (s *solver) Check(ctx context.Context) (Result, error) {
	s.model = nil

	d, err := newLitMapping(s.assertions)
	if err != nil {
		return Unknown, err
	}
	s.tracer.Trace(d.Stats())

	g := gini.New()
	d.AddConstraints(g)
	d.AssumeConstraints(g)

	result := Result(waitForSolution(ctx, g.GoSolve()))
	if err := d.Error(); err != nil {
		// This likely indicates a bug, so discard whatever
		// the solver produced.
		return Unknown, err
	}
	if result == Unsatisfiable && d.truncated {
		// An unbounded cell was given a finite range that arithmetic
		// may need to exceed.
		return Unknown, nil
	}
	if result == Satisfiable {
		s.model = &model{lits: d, g: g}
	}
	return result, nil
}

func (s *solver) Model() (Model, error) {
	if s.model == nil {
		return nil, ErrNoModel
	}
	return s.model, nil
}

func waitForSolution(ctx context.Context, gs inter.Solve) int {
	if result, ok := gs.Test(); ok {
		return result
	}

	t := time.NewTicker(pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return gs.Stop()
		case <-t.C:
			if result, ok := gs.Test(); ok {
				return result
			}
		}
	}
}

// New returns a Solver with no assertions beyond those supplied by
// options. Every Solver is an independent session.
func New(options ...Option) (Solver, error) {
	s := solver{}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

type Option func(s *solver) error

// WithFormulas asserts fs in the new session.
func WithFormulas(fs ...formula.Formula) Option {
	return func(s *solver) error {
		s.assertions = append(s.assertions, fs...)
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(s *solver) error {
		s.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(s *solver) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
}
