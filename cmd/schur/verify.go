package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/operator-framework/schur-solver/pkg/lib/signals"
	"github.com/operator-framework/schur-solver/pkg/schur"
)

// errInvalidColoring makes the process exit non-zero once the
// counterexample has been printed.
var errInvalidColoring = errors.New("coloring has a monochromatic triple")

func newVerifyCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:   "verify [flags] COLORING",
		Short: "Checks a coloring such as 1,2,2,1 for monochromatic a+b=c",
		Long: `Checks that a coloring of 1..N uses colors in 1..C and that no a+b=c
has a single color. N defaults to the length of the coloring.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.out = cmd.OutOrStdout()
			coloring, err := schur.ParseColoring(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("numbers") {
				o.numbers = len(coloring)
			}

			logger := o.logger(cmd.ErrOrStderr())
			ctx, cancel := context.WithCancel(signals.Context())
			defer cancel()

			return o.verify(ctx, o.querier(logger), coloring)
		},
	}

	o.addFlags(cmd.Flags())
	return cmd
}

func (o *options) verify(ctx context.Context, q *schur.Querier, coloring schur.Coloring) error {
	p, err := newPrinter(o.out, o.output)
	if err != nil {
		return err
	}
	v, err := q.VerifyColoring(ctx, o.colors, o.numbers, coloring)
	if err != nil {
		return err
	}
	if err := p.Verified(verified{Colors: o.colors, Numbers: o.numbers, Coloring: coloring, Verdict: v}); err != nil {
		return err
	}
	if !v.Valid {
		return errInvalidColoring
	}
	return nil
}
