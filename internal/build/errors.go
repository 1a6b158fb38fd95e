package build

import (
	"errors"
	"fmt"
)

// Kind classifies the step a build run failed at.
type Kind int

const (
	KindConfiguration Kind = iota + 1 // no toolchain could be resolved
	KindIO                            // the output directory could not be created
	KindCompile                       // the compiler exited nonzero
	KindLaunch                        // the compiler could not be started
	KindTimeout                       // the compiler ran past its deadline
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindIO:
		return "io error"
	case KindCompile:
		return "compile error"
	case KindLaunch:
		return "launch error"
	case KindTimeout:
		return "timeout error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitLaunchFailure is the exit status reported when the compiler never ran
// to completion.
const ExitLaunchFailure = -1

// Process exit statuses of the failures that carry no compiler status.
const (
	ExitIO            = 1
	ExitConfiguration = 2
	ExitTimeout       = 124
	ExitLaunch        = 127
)

// Error is a failed build step.
type Error struct {
	Kind Kind
	Step string // what was being done, e.g. "compile src/main.c"
	Code int    // compiler exit status for KindCompile
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Step != "" {
		msg += ": " + e.Step
	}
	if e.Kind == KindCompile {
		msg += fmt.Sprintf(": exit status %d", e.Code)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for the outcome err of a build
// run: 0 for nil, the compiler's own status for compile errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !errors.As(err, &e) {
		return 1
	}
	switch e.Kind {
	case KindCompile:
		if e.Code != 0 {
			return e.Code
		}
		return 1
	case KindConfiguration:
		return ExitConfiguration
	case KindIO:
		return ExitIO
	case KindTimeout:
		return ExitTimeout
	case KindLaunch:
		return ExitLaunch
	}
	return 1
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
