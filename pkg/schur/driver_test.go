package schur

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/schur-solver/pkg/solver"
	"github.com/operator-framework/schur-solver/pkg/solver/solverfakes"
)

type recordingReporter struct {
	steps   []Step
	records []Record
}

func (r *recordingReporter) Step(s Step) {
	r.steps = append(r.steps, s)
}

func (r *recordingReporter) SchurNumber(rec Record) {
	r.records = append(r.records, rec)
}

// sequence hands out the given sessions in order.
func sequence(t *testing.T, sessions ...solver.Solver) SolverFactory {
	return func(...solver.Option) (solver.Solver, error) {
		require.NotEmpty(t, sessions, "unexpected solver session")
		s := sessions[0]
		sessions = sessions[1:]
		return s, nil
	}
}

func TestDriverStopsAtMaxColors(t *testing.T) {
	r := &recordingReporter{}
	d := NewDriver(NewQuerier(), WithReporter(r), WithMaxColors(2))
	require.NoError(t, d.Run(context.Background()))

	assert.Equal(t, []Record{{Colors: 1, Numbers: 2}, {Colors: 2, Numbers: 5}}, d.Results())
	assert.Equal(t, d.Results(), r.records)

	var cursor [][2]int
	for _, s := range r.steps {
		cursor = append(cursor, [2]int{s.Colors, s.Numbers})
	}
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 3}, {2, 4}, {2, 5}}, cursor)
	assert.True(t, r.steps[0].Found)
	assert.Equal(t, Coloring{1}, r.steps[0].Coloring)
	assert.False(t, r.steps[1].Found)
	assert.Nil(t, r.steps[1].Coloring)

	colors, numbers := d.Cursor()
	assert.Equal(t, 2, colors)
	assert.Equal(t, 5, numbers)
}

func TestDriverStart(t *testing.T) {
	r := &recordingReporter{}
	d := NewDriver(NewQuerier(), WithReporter(r), WithStart(2, 4), WithMaxColors(2))
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, []Record{{Colors: 2, Numbers: 5}}, d.Results())
	assert.Len(t, r.steps, 2)
}

func TestDriverHaltsOnIndeterminate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := solverfakes.NewMockModel(ctrl)
	m.EXPECT().Eval(gomock.Any()).Return(int64(1), nil)
	decided := solverfakes.NewMockSolver(ctrl)
	decided.EXPECT().Add(gomock.Any())
	decided.EXPECT().Check(gomock.Any()).Return(solver.Satisfiable, nil)
	decided.EXPECT().Model().Return(m, nil)

	undecided := solverfakes.NewMockSolver(ctrl)
	undecided.EXPECT().Add(gomock.Any())
	undecided.EXPECT().Check(gomock.Any()).Return(solver.Unknown, nil)

	r := &recordingReporter{}
	d := NewDriver(NewQuerier(WithSolverFactory(sequence(t, decided, undecided))), WithReporter(r))
	err := d.Run(context.Background())
	assert.ErrorIs(t, err, Indeterminate)

	colors, numbers := d.Cursor()
	assert.Equal(t, 1, colors)
	assert.Equal(t, 2, numbers)
	assert.Len(t, r.steps, 1)
	assert.Empty(t, d.Results())
}

func TestDriverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver(NewQuerier(WithSolverFactory(sequence(t))))
	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
}

func TestDriverCancelledDuringQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := solverfakes.NewMockSolver(ctrl)
	s.EXPECT().Add(gomock.Any())
	s.EXPECT().Check(gomock.Any()).DoAndReturn(func(context.Context) (solver.Result, error) {
		cancel()
		return solver.Unknown, nil
	})

	d := NewDriver(NewQuerier(WithSolverFactory(sequence(t, s))))
	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
	colors, numbers := d.Cursor()
	assert.Equal(t, 1, colors)
	assert.Equal(t, 1, numbers)
}

func TestResultsIsACopy(t *testing.T) {
	d := NewDriver(NewQuerier(), WithMaxColors(1))
	require.NoError(t, d.Run(context.Background()))
	results := d.Results()
	results[0].Numbers = 100
	assert.Equal(t, 2, d.Results()[0].Numbers)
}
