package command

import (
	"errors"
	"fmt"
)

var (
	ErrNothingLoaded = errors.New("nothing loaded yet")
	ErrNotSearch     = errors.New("entry is not a search")
)

// UnknownCommandError is returned for input matching no command. Suggestion
// holds the closest known command, if any.
type UnknownCommandError struct {
	Input      string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %q?)", e.Input, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q, type help", e.Input)
}

// UsageError reports a known command called with bad arguments.
type UsageError struct {
	Command string
	Usage   string
	Err     error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (usage: %s)", e.Command, e.Err, e.Usage)
	}
	return "usage: " + e.Usage
}

func (e *UsageError) Unwrap() error { return e.Err }
