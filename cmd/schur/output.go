package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"

	"github.com/operator-framework/schur-solver/pkg/metrics"
	"github.com/operator-framework/schur-solver/pkg/schur"
)

const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

// found is the result of a single search.
type found struct {
	Colors   int            `json:"colors"`
	Numbers  int            `json:"numbers"`
	Coloring schur.Coloring `json:"coloring"`
}

// verified is the result of checking a candidate coloring.
type verified struct {
	Colors   int            `json:"colors"`
	Numbers  int            `json:"numbers"`
	Coloring schur.Coloring `json:"coloring"`
	schur.Verdict
}

// event is one entry of the stream written while iterating. Exactly
// one field is set.
type event struct {
	Step        *step         `json:"step,omitempty"`
	SchurNumber *schur.Record `json:"schurNumber,omitempty"`
}

// step is the structured form of schur.Step, with the elapsed time in
// seconds as in text output.
type step struct {
	Colors         int            `json:"colors"`
	Numbers        int            `json:"numbers"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	Found          bool           `json:"found"`
	Coloring       schur.Coloring `json:"coloring,omitempty"`
}

type printer interface {
	schur.Reporter
	Found(f found) error
	Verified(v verified) error
	// Err returns the first error hit while reporting progress.
	Err() error
}

func newPrinter(out io.Writer, format string) (printer, error) {
	switch format {
	case outputText:
		return &textPrinter{out: out}, nil
	case outputJSON:
		return &structuredPrinter{out: out, marshal: marshalJSON}, nil
	case outputYAML:
		return &structuredPrinter{out: out, marshal: marshalYAML}, nil
	}
	return nil, fmt.Errorf("unknown output format %q, must be one of %s, %s or %s", format, outputText, outputYAML, outputJSON)
}

// firstError keeps the first error passed to record.
type firstError struct {
	err error
}

func (e *firstError) record(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *firstError) Err() error {
	return e.err
}

type textPrinter struct {
	firstError
	out io.Writer
}

func (p *textPrinter) Found(f found) error {
	_, err := fmt.Fprintf(p.out, "Numbers: %d\nColors:  %d\nAssigned Colors: %s\n", f.Numbers, f.Colors, f.Coloring)
	return err
}

func (p *textPrinter) Verified(v verified) error {
	if v.Valid {
		_, err := fmt.Fprintln(p.out, "Valid coloring")
		return err
	}
	_, err := fmt.Fprintf(p.out, "Counterexample found: %s\n", v.Counterexample)
	return err
}

func (p *textPrinter) Step(s schur.Step) {
	_, err := fmt.Fprintf(p.out, "%d colors with N=%d took %.4f seconds\n", s.Colors, s.Numbers, s.Elapsed.Seconds())
	p.record(err)
}

func (p *textPrinter) SchurNumber(r schur.Record) {
	_, err := fmt.Fprintln(p.out, r)
	p.record(err)
}

type structuredPrinter struct {
	firstError
	out     io.Writer
	marshal func(v interface{}) ([]byte, error)
}

func marshalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func marshalYAML(v interface{}) ([]byte, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte("---\n"), b...), nil
}

func (p *structuredPrinter) write(v interface{}) error {
	b, err := p.marshal(v)
	if err != nil {
		return err
	}
	_, err = p.out.Write(b)
	return err
}

func (p *structuredPrinter) Found(f found) error {
	return p.write(f)
}

func (p *structuredPrinter) Verified(v verified) error {
	return p.write(v)
}

func (p *structuredPrinter) Step(s schur.Step) {
	p.record(p.write(event{Step: &step{
		Colors:         s.Colors,
		Numbers:        s.Numbers,
		ElapsedSeconds: s.Elapsed.Seconds(),
		Found:          s.Found,
		Coloring:       s.Coloring,
	}}))
}

func (p *structuredPrinter) SchurNumber(r schur.Record) {
	p.record(p.write(event{SchurNumber: &r}))
}

// reporters fans progress out to every member.
type reporters []schur.Reporter

func (rs reporters) Step(s schur.Step) {
	for _, r := range rs {
		r.Step(s)
	}
}

func (rs reporters) SchurNumber(rec schur.Record) {
	for _, r := range rs {
		r.SchurNumber(rec)
	}
}

type metricsReporter struct{}

func (metricsReporter) Step(s schur.Step) {
	metrics.EmitCursor(s.Colors, s.Numbers)
}

func (metricsReporter) SchurNumber(r schur.Record) {
	metrics.EmitSchurNumber(r.Colors, r.Numbers)
}
