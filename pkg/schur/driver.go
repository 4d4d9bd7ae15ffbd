package schur

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Step describes one query issued by the Driver.
type Step struct {
	Colors   int           `json:"colors"`
	Numbers  int           `json:"numbers"`
	Elapsed  time.Duration `json:"elapsed"`
	Found    bool          `json:"found"`
	Coloring Coloring      `json:"coloring,omitempty"`
}

// Record reports the first count of numbers for which no valid
// coloring with Colors colors exists.
type Record struct {
	Colors  int `json:"colors"`
	Numbers int `json:"numbers"`
}

func (r Record) String() string {
	return fmt.Sprintf("S(%d) = %d", r.Colors, r.Numbers)
}

// Standard returns the Schur number in its conventional form: the
// largest count of numbers that can still be colored.
func (r Record) Standard() int {
	return r.Numbers - 1
}

// Reporter receives progress from a Driver as it happens.
type Reporter interface {
	Step(s Step)
	SchurNumber(r Record)
}

type discardReporter struct{}

func (discardReporter) Step(Step)          {}
func (discardReporter) SchurNumber(Record) {}

// Driver walks the (colors, numbers) plane looking for the point at
// which each color count stops admitting a valid coloring. Numbers
// advances on every query, failing or not, and is never reset when
// colors increases.
type Driver struct {
	querier   *Querier
	reporter  Reporter
	logger    logrus.FieldLogger
	colors    int
	numbers   int
	maxColors int
	results   []Record
}

type DriverOption func(d *Driver)

// WithStart sets the first cursor position. The default is one color
// and one number.
func WithStart(colors, numbers int) DriverOption {
	return func(d *Driver) {
		d.colors = colors
		d.numbers = numbers
	}
}

// WithMaxColors stops the search once the Schur number for k colors
// has been recorded. Zero searches forever.
func WithMaxColors(k int) DriverOption {
	return func(d *Driver) {
		d.maxColors = k
	}
}

func WithReporter(r Reporter) DriverOption {
	return func(d *Driver) {
		d.reporter = r
	}
}

func WithDriverLogger(logger logrus.FieldLogger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

func NewDriver(q *Querier, options ...DriverOption) *Driver {
	d := &Driver{
		querier: q,
		colors:  1,
		numbers: 1,
	}
	for _, option := range options {
		option(d)
	}
	if d.reporter == nil {
		d.reporter = discardReporter{}
	}
	if d.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.logger = l
	}
	return d
}

// Run issues queries until the context is done, a query cannot be
// decided or the color limit is reached. A query error halts the
// search without moving the cursor.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		coloring, err := d.querier.FindValidColoring(ctx, d.colors, d.numbers)
		elapsed := time.Since(start)

		var none NoValidColoring
		switch {
		case err == nil:
			d.reporter.Step(Step{Colors: d.colors, Numbers: d.numbers, Elapsed: elapsed, Found: true, Coloring: coloring})
			d.numbers++
		case errors.As(err, &none):
			d.reporter.Step(Step{Colors: d.colors, Numbers: d.numbers, Elapsed: elapsed})
			r := Record{Colors: d.colors, Numbers: d.numbers}
			d.results = append(d.results, r)
			d.reporter.SchurNumber(r)
			d.logger.WithField("standard", r.Standard()).Infof("recorded %s", r)
			if d.maxColors > 0 && d.colors >= d.maxColors {
				return nil
			}
			d.colors++
			d.numbers++
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			d.logger.WithError(err).Warnf("search halted at %d colors, %d numbers", d.colors, d.numbers)
			return err
		}
	}
}

// Cursor returns the next query the Driver would issue.
func (d *Driver) Cursor() (colors, numbers int) {
	return d.colors, d.numbers
}

// Results returns the Schur numbers recorded so far.
func (d *Driver) Results() []Record {
	out := make([]Record, len(d.results))
	copy(out, d.results)
	return out
}
