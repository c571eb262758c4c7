package domain

import (
	"errors"
	"fmt"
)

// ErrTreeStructure is the sentinel matched by every TreeStructureError.
var ErrTreeStructure = errors.New("invalid tree structure")

// ErrMissingInput is the sentinel matched by every MissingInputError.
var ErrMissingInput = errors.New("missing input")

// ErrConversion is the sentinel matched by every ConversionError.
var ErrConversion = errors.New("conversion failed")

// ErrUnboundPort is returned when a node writes to an output port that has no blackboard key.
var ErrUnboundPort = errors.New("port not bound to a blackboard key")

// ErrHalted is returned by the execution driver when the tree was halted before completion.
var ErrHalted = errors.New("tree halted")

// ErrTreeNotFound is returned by loaders when a tree definition cannot be found.
var ErrTreeNotFound = errors.New("tree not found")

// TreeStructureError reports a definition that cannot be turned into a tree.
// It is raised while building, never while ticking.
type TreeStructureError struct {
	Tree   string
	Node   string
	Reason string
	Err    error
}

func (e *TreeStructureError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Tree != "" && e.Node != "":
		return fmt.Sprintf("tree '%s', node '%s': %s", e.Tree, e.Node, msg)
	case e.Tree != "":
		return fmt.Sprintf("tree '%s': %s", e.Tree, msg)
	default:
		return msg
	}
}

func (e *TreeStructureError) Unwrap() error { return e.Err }

func (e *TreeStructureError) Is(target error) bool { return target == ErrTreeStructure }

// MissingInputError reports an input port that could not be resolved at tick time.
type MissingInputError struct {
	Node   string
	Port   string
	Key    string // blackboard key when the port is bound to one
	Reason string
}

func (e *MissingInputError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no value"
	}
	if e.Key != "" {
		return fmt.Sprintf("node '%s': missing required input [%s] (key '%s'): %s", e.Node, e.Port, e.Key, reason)
	}
	return fmt.Sprintf("node '%s': missing required input [%s]: %s", e.Node, e.Port, reason)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// ConversionError reports a value that does not match, or cannot be parsed into, a port type.
type ConversionError struct {
	Node  string
	Port  string
	Type  string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	subject := e.Port
	if e.Node != "" {
		subject = fmt.Sprintf("%s.%s", e.Node, e.Port)
	}
	return fmt.Sprintf("cannot convert %v (%T) to %s for [%s]: %v", e.Value, e.Value, e.Type, subject, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }
