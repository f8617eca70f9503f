package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Outcome is the terminal state of a step.
type Outcome string

const (
	Completed Outcome = "completed"
	Aborted   Outcome = "aborted"
)

// Check is one named phase of a sequence. A non-nil error or a panic from
// Run aborts the whole sequence.
type Check struct {
	Label string
	Run   func(ctx context.Context) error
}

// StepRecord is the report for one finished step.
type StepRecord struct {
	Label   string        `json:"label" yaml:"label"`
	Outcome Outcome       `json:"outcome" yaml:"outcome"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	Reason  string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// SequenceResult is the report for a whole sequence run.
type SequenceResult struct {
	Title   string
	Outcome Outcome
	Started time.Time
	Elapsed time.Duration
	Reason  string
	Steps   []StepRecord
}

// AbortError unwinds a sequence. It carries the label of the aborted step
// and the reason it was aborted with.
type AbortError struct {
	Label   string
	Elapsed time.Duration
	Reason  error
}

func (e *AbortError) Error() string { return e.Reason.Error() }

func (e *AbortError) Unwrap() error { return e.Reason }

// ExitCode propagates the code of a failing process, defaulting to 1.
func (e *AbortError) ExitCode() int {
	var coded interface{ ExitCode() int }
	if errors.As(e.Reason, &coded) {
		if code := coded.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}

// Tasks starts steps and logs their BEGIN, END and ABORT transitions.
type Tasks struct {
	Log zerolog.Logger
	Now func() time.Time
}

func NewTasks(log zerolog.Logger) *Tasks {
	return &Tasks{
		Log: log.With().Str("component", "gate").Logger(),
		Now: time.Now,
	}
}

// Step is one labelled, timed phase. It must be finished exactly once with
// End or Abort.
type Step struct {
	Label    string
	Start    time.Time
	tasks    *Tasks
	finished bool
}

// Begin records the start time of label and logs BEGIN.
func (t *Tasks) Begin(label string) *Step {
	s := &Step{Label: label, Start: t.now(), tasks: t}
	t.Log.Info().Str("task", label).Msg("BEGIN")
	return s
}

// End marks the step as completed and logs END with the elapsed time.
func (s *Step) End() time.Duration {
	d := s.finish()
	s.tasks.Log.Info().Str("task", s.Label).Str("elapsed", d.String()).Msg("END")
	return d
}

// Abort marks the step as aborted, logs ABORT and returns the error that
// must be propagated to stop the sequence.
func (s *Step) Abort(reason error) *AbortError {
	if reason == nil {
		reason = errors.New("aborted")
	}
	d := s.finish()
	s.tasks.Log.Error().Str("task", s.Label).Str("elapsed", d.String()).Str("reason", reason.Error()).Msg("ABORT")
	return &AbortError{Label: s.Label, Elapsed: d, Reason: reason}
}

func (s *Step) finish() time.Duration {
	if s.finished {
		panic(fmt.Sprintf("step %q finished twice", s.Label))
	}
	s.finished = true
	d := s.tasks.now().Sub(s.Start)
	if d < 0 {
		d = 0
	}
	return d
}

func (t *Tasks) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// Run executes checks in order inside an outer step named title. The first
// failing check aborts its own step and then the outer step; no later check
// runs. The returned error is nil iff every check completed.
func (t *Tasks) Run(ctx context.Context, title string, checks []Check) (*SequenceResult, error) {
	total := t.Begin(title)
	res := &SequenceResult{Title: title, Started: total.Start}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return res.abort(total, err)
		}
		step := t.Begin(c.Label)
		if err := runCheck(ctx, c); err != nil {
			inner := step.Abort(err)
			res.Steps = append(res.Steps, StepRecord{
				Label:   c.Label,
				Outcome: Aborted,
				Elapsed: inner.Elapsed,
				Reason:  err.Error(),
			})
			return res.abort(total, inner)
		}
		res.Steps = append(res.Steps, StepRecord{
			Label:   c.Label,
			Outcome: Completed,
			Elapsed: step.End(),
		})
	}

	res.Elapsed = total.End()
	res.Outcome = Completed
	return res, nil
}

func (r *SequenceResult) abort(total *Step, reason error) (*SequenceResult, error) {
	err := total.Abort(reason)
	r.Elapsed = err.Elapsed
	r.Outcome = Aborted
	r.Reason = reason.Error()
	return r, err
}

func runCheck(ctx context.Context, c Check) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	if c.Run == nil {
		return nil
	}
	return c.Run(ctx)
}
