package solver

import (
	"fmt"
	"io"
)

// Stats summarizes the translation of one Check call.
type Stats struct {
	// Instances counts the quantifier bodies instantiated while
	// grounding.
	Instances int
	Scalars   int
	Cells     int
	// Values is the total number of value literals over all
	// scalars and cells.
	Values int
	// Gates is the size of the circuit handed to the SAT solver.
	Gates int
}

type Tracer interface {
	Trace(s Stats)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Stats) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(s Stats) {
	fmt.Fprintf(t.Writer, "---\nGrounding:\n")
	fmt.Fprintf(t.Writer, "- instances: %d\n", s.Instances)
	fmt.Fprintf(t.Writer, "- scalars: %d\n", s.Scalars)
	fmt.Fprintf(t.Writer, "- cells: %d\n", s.Cells)
	fmt.Fprintf(t.Writer, "Circuit:\n")
	fmt.Fprintf(t.Writer, "- values: %d\n", s.Values)
	fmt.Fprintf(t.Writer, "- gates: %d\n", s.Gates)
}
