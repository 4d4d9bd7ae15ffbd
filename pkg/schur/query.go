package schur

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/schur-solver/pkg/formula"
	"github.com/operator-framework/schur-solver/pkg/solver"
)

const (
	QueryFind   = "find"
	QueryVerify = "verify"

	OutcomeError = "error"
)

// QueryObserver is notified once per query with the query name, its
// outcome and how long the solver took.
type QueryObserver func(query, outcome string, elapsed time.Duration)

// SolverFactory opens a new solver session.
type SolverFactory func(options ...solver.Option) (solver.Solver, error)

// Querier answers coloring queries. Every query runs in a fresh solver
// session.
type Querier struct {
	logger    logrus.FieldLogger
	newSolver SolverFactory
	tracer    solver.Tracer
	observe   QueryObserver
	timeout   time.Duration
}

type Option func(q *Querier)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(q *Querier) {
		q.logger = logger
	}
}

// WithSolverFactory replaces the session constructor, which defaults
// to solver.New.
func WithSolverFactory(f SolverFactory) Option {
	return func(q *Querier) {
		q.newSolver = f
	}
}

// WithTracer passes t to every solver session.
func WithTracer(t solver.Tracer) Option {
	return func(q *Querier) {
		q.tracer = t
	}
}

func WithQueryObserver(o QueryObserver) Option {
	return func(q *Querier) {
		q.observe = o
	}
}

// WithQueryTimeout bounds the time each query may spend in the solver.
// A query that runs out of time is Indeterminate. Zero means no bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(q *Querier) {
		q.timeout = d
	}
}

func NewQuerier(options ...Option) *Querier {
	q := &Querier{}
	for _, option := range options {
		option(q)
	}
	if q.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		q.logger = l
	}
	if q.newSolver == nil {
		q.newSolver = solver.New
	}
	if q.tracer == nil {
		q.tracer = solver.DefaultTracer{}
	}
	if q.observe == nil {
		q.observe = func(string, string, time.Duration) {}
	}
	return q
}

// FindValidColoring returns a coloring of 1..numbers with the given
// number of colors in which no triple a+b=c is monochromatic. If there
// is none, the error is a NoValidColoring.
func (q *Querier) FindValidColoring(ctx context.Context, colors, numbers int) (Coloring, error) {
	if err := validateInstance(colors, numbers); err != nil {
		return nil, err
	}
	in := NewInstance(colors, numbers)

	m, err := q.check(ctx, QueryFind, in, in.WellFormed(), in.NoMonochromaticTriple())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NoValidColoring{Colors: colors, Numbers: numbers}
	}
	coloring, err := in.extractColoring(m)
	if err != nil {
		return nil, errors.Wrapf(err, "extracting coloring with %d colors for 1..%d", colors, numbers)
	}
	return coloring, nil
}

// VerifyColoring decides whether coloring avoids every monochromatic
// triple. An invalid coloring is reported with one such triple.
func (q *Querier) VerifyColoring(ctx context.Context, colors, numbers int, coloring Coloring) (Verdict, error) {
	if err := validateInstance(colors, numbers); err != nil {
		return Verdict{}, err
	}
	if err := validateCandidate(colors, numbers, coloring); err != nil {
		return Verdict{}, err
	}
	in := NewInstance(colors, numbers)

	fs := append([]formula.Formula{in.WellFormed()}, in.Pin(coloring)...)
	fs = append(fs, in.MonochromaticTriple())
	m, err := q.check(ctx, QueryVerify, in, fs...)
	if err != nil {
		return Verdict{}, err
	}
	if m == nil {
		return Verdict{Valid: true}, nil
	}
	t, err := extractTriple(m)
	if err != nil {
		return Verdict{}, errors.Wrapf(err, "extracting counterexample for %s", coloring)
	}
	return Verdict{Counterexample: &t}, nil
}

// check runs one session over fs. It returns the model when the
// formulas are satisfiable and a nil model when they are not.
func (q *Querier) check(ctx context.Context, query string, in *Instance, fs ...formula.Formula) (solver.Model, error) {
	log := q.logger.WithFields(logrus.Fields{
		"query":   query,
		"colors":  in.Colors(),
		"numbers": in.Numbers(),
	})

	start := time.Now()
	result, m, err := q.solve(ctx, fs)
	elapsed := time.Since(start)

	outcome := result.String()
	if err != nil {
		outcome = OutcomeError
	}
	q.observe(query, outcome, elapsed)
	log.WithFields(logrus.Fields{
		"outcome": outcome,
		"elapsed": elapsed,
	}).Debug("query finished")

	if err != nil {
		return nil, errors.Wrapf(err, "%s query with %d colors for 1..%d", query, in.Colors(), in.Numbers())
	}
	switch result {
	case solver.Satisfiable:
		return m, nil
	case solver.Unsatisfiable:
		return nil, nil
	}
	return nil, errors.Wrapf(Indeterminate, "%s query with %d colors for 1..%d", query, in.Colors(), in.Numbers())
}

func (q *Querier) solve(ctx context.Context, fs []formula.Formula) (solver.Result, solver.Model, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	s, err := q.newSolver(solver.WithTracer(q.tracer))
	if err != nil {
		return solver.Unknown, nil, err
	}
	s.Add(fs...)

	result, err := s.Check(ctx)
	if err != nil || result != solver.Satisfiable {
		return result, nil, err
	}
	m, err := s.Model()
	if err != nil {
		return solver.Unknown, nil, err
	}
	return result, m, nil
}
