package main

import (
	"errors"
	"fmt"
)

// Exception kinds. The numeric value is also the process exit code.
const (
	StepFailed int8 = iota + 1
	UsageInvalid
	ConfigInvalid
)

var exps = map[int8]string{
	StepFailed:    "%s",
	UsageInvalid:  "usage error: %s",
	ConfigInvalid: "configuration error: %s",
}

// Exception is an error of one of the kinds above.
type Exception struct {
	Kind int8
	Msg  string
}

// Raise builds an exception of the given kind, formatting value into the
// kind's message template.
func Raise(kind int8, value string) *Exception {
	format, ok := exps[kind]
	if !ok {
		format = "%s"
	}
	return &Exception{Kind: kind, Msg: fmt.Sprintf(format, value)}
}

func (e *Exception) Error() string { return e.Msg }

func (e *Exception) ExitCode() int { return int(e.Kind) }

func usageErrorf(format string, args ...any) error {
	return Raise(UsageInvalid, fmt.Sprintf(format, args...))
}

func configErrorf(format string, args ...any) error {
	return Raise(ConfigInvalid, fmt.Sprintf(format, args...))
}

// IsKind reports whether err wraps an Exception of the given kind.
func IsKind(err error, kind int8) bool {
	var e *Exception
	return errors.As(err, &e) && e.Kind == kind
}

// ExitCode maps an error returned by a handler to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}
