package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/schur-solver/pkg/lib/signals"
	"github.com/operator-framework/schur-solver/pkg/metrics"
	"github.com/operator-framework/schur-solver/pkg/schur"
	"github.com/operator-framework/schur-solver/pkg/solver"
	schurversion "github.com/operator-framework/schur-solver/pkg/version"
)

const timeoutEnv = "SCHUR_TIMEOUT"

type options struct {
	colors      int
	numbers     int
	iterate     bool
	maxColors   int
	timeout     time.Duration
	output      string
	metricsAddr string
	debug       bool
	version     bool

	out io.Writer
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:           "schur",
		Short:         "Finds colorings free of monochromatic a+b=c and searches for Schur numbers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.out = cmd.OutOrStdout()
			if o.version {
				fmt.Fprint(o.out, schurversion.String())
				return nil
			}

			logger := o.logger(cmd.ErrOrStderr())
			ctx, cancel := context.WithCancel(signals.Context())
			defer cancel()

			return o.run(ctx, logger)
		},
	}

	o.addFlags(cmd.Flags())
	cmd.Flags().BoolVar(&o.iterate, "iterate", false, "search for Schur numbers, starting from one color and one number")
	cmd.Flags().IntVar(&o.maxColors, "max-colors", 0, "with --iterate, stop after the Schur number for this many colors is found; 0 searches forever")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "address on which to serve prometheus metrics, e.g. :8080; empty disables")
	cmd.Flags().BoolVar(&o.version, "version", false, "displays the schur version")

	cmd.AddCommand(newVerifyCmd())
	return cmd
}

// addFlags binds the flags shared by every command.
func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.colors, "colors", "C", 0, "total number of colors")
	fs.IntVarP(&o.numbers, "numbers", "N", 0, "number of elements in the set 1..N")
	fs.DurationVar(&o.timeout, "timeout", defaultTimeout(), "time limit for each solver query, 0 means none (default from "+timeoutEnv+")")
	fs.StringVarP(&o.output, "output", "o", outputText, "output format, one of text, yaml or json")
	fs.BoolVar(&o.debug, "debug", false, "use debug log level")
}

func defaultTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv(timeoutEnv))
	if err != nil {
		return 0
	}
	return d
}

func (o *options) logger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	if o.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.Infof("log level %s", logger.Level)
	if v, ok := os.LookupEnv(timeoutEnv); ok {
		if _, err := time.ParseDuration(v); err != nil {
			logger.Warnf("ignoring %s=%q: %v", timeoutEnv, v, err)
		}
	}
	return logger
}

func (o *options) querier(logger *logrus.Logger) *schur.Querier {
	opts := []schur.Option{
		schur.WithLogger(logger),
		schur.WithQueryTimeout(o.timeout),
		schur.WithQueryObserver(metrics.EmitQuery),
	}
	if o.debug {
		opts = append(opts, schur.WithTracer(solver.LoggingTracer{Writer: logger.WriterLevel(logrus.DebugLevel)}))
	}
	return schur.NewQuerier(opts...)
}

func (o *options) run(ctx context.Context, logger *logrus.Logger) error {
	p, err := newPrinter(o.out, o.output)
	if err != nil {
		return err
	}
	q := o.querier(logger)

	if !o.iterate {
		return o.findOnce(ctx, q, p)
	}

	return serveMetrics(ctx, logger, o.metricsAddr, func(ctx context.Context) error {
		d := schur.NewDriver(q,
			schur.WithReporter(reporters{p, metricsReporter{}}),
			schur.WithDriverLogger(logger),
			schur.WithMaxColors(o.maxColors),
		)
		err := d.Run(ctx)
		if errors.Is(err, context.Canceled) {
			colors, numbers := d.Cursor()
			logger.Infof("interrupted at %d colors, %d numbers", colors, numbers)
			err = nil
		}
		if perr := p.Err(); perr != nil && err == nil {
			return errors.Wrap(perr, "writing progress")
		}
		return err
	})
}

func (o *options) findOnce(ctx context.Context, q *schur.Querier, p printer) error {
	coloring, err := q.FindValidColoring(ctx, o.colors, o.numbers)
	var none schur.NoValidColoring
	switch {
	case errors.As(err, &none):
		coloring = schur.Coloring{}
	case err != nil:
		return err
	}
	return p.Found(found{Colors: o.colors, Numbers: o.numbers, Coloring: coloring})
}
