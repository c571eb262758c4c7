// Package control implements the composite and decorator nodes that make up the tick engine.
//
// Sequence and Fallback remember the index of the RUNNING child and resume from it
// on the next tick; the index is cleared whenever the composite completes. The
// reactive variants re-evaluate from the first child on every tick and halt any
// later RUNNING sibling. Parallel ticks every non-completed child and resolves
// on configurable success and failure thresholds.
//
// Decorators own exactly one child. Halting any control node resets its own
// bookkeeping first and then halts its children, so asynchronous leaves see
// OnHalted in pre-order.
package control
