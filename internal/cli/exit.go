package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tally/internal/model"
	"github.com/Makepad-fr/tally/internal/store"
)

// Exit codes: 0 ok, 1 runtime or storage error, 2 usage or validation.
const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// exitError carries a process exit code. A nil err means the message was
// already printed.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e exitError) ExitCode() int {
	return e.code
}

func (e exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return exitError{code: exitUsage, err: err}
}

// usageArgs makes cobra's argument checks exit with the usage code.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// classify maps domain errors onto exit codes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee exitError
	if errors.As(err, &ee) {
		return err
	}
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, store.ErrOutOfRange),
		errors.Is(err, store.ErrNotFound):
		return usageError(err)
	}
	return exitError{code: exitRuntime, err: err}
}

func codeOf(err error) int {
	if err == nil {
		return exitOK
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitRuntime
}
