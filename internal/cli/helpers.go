package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
)

// ErrTreeFailed is returned when the root completes with FAILURE.
var ErrTreeFailed = errors.New("tree failed")

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// handleExecutionError turns the outcome of a run into the command result.
// Interruptions are not errors.
func handleExecutionError(w io.Writer, id string, status domain.Status, err error) error {
	switch {
	case errors.Is(err, domain.ErrHalted):
		printSystemMessage(w, "Halted '%s'.", id)
		return nil
	case err != nil:
		return err
	case status == domain.StatusFailure:
		printSystemMessage(w, "Finished '%s' with %s.", id, status)
		return fmt.Errorf("%w: %s", ErrTreeFailed, id)
	default:
		printSystemMessage(w, "Finished '%s' with %s.", id, status)
		return nil
	}
}
