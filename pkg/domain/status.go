package domain

import (
	"fmt"
	"strings"
)

// Status is the result of ticking a node.
type Status string

const (
	StatusIdle    Status = "IDLE"    // Not ticked yet, or reset after completion/halt
	StatusRunning Status = "RUNNING" // Awaiting completion; the node expects more ticks
	StatusSuccess Status = "SUCCESS" // Completed successfully this cycle
	StatusFailure Status = "FAILURE" // Completed with a business-logic failure this cycle
	StatusSkipped Status = "SKIPPED" // Bypassed by a precondition without being ticked
)

// IsActive reports whether the node is awaiting completion.
func (s Status) IsActive() bool {
	return s == StatusRunning
}

// IsCompleted reports whether the status is terminal for the current cycle.
func (s Status) IsCompleted() bool {
	return s == StatusSuccess || s == StatusFailure
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a case-insensitive status name into a Status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusIdle, StatusRunning, StatusSuccess, StatusFailure, StatusSkipped:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status: %q", raw)
	}
}
