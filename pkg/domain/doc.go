/*
Package domain contains the core vocabulary of the arbor behavior-tree engine.

It defines the values shared by every other package: node statuses, node kinds,
port declarations and bindings, the structural tree definitions consumed by the
builder, the error taxonomy and the observability events. This package is kept
pure and free of I/O.

# Key Entities

  - Status: IDLE, RUNNING, SUCCESS, FAILURE or SKIPPED.
  - PortInfo / Binding: the typed data-flow contract between a node and the blackboard.
  - NodeSpec / TreeSpec / Document: parsed tree definitions.
  - TreeStructureError, MissingInputError, ConversionError: build-time and tick-time failures.
  - TickHooks: callbacks for status changes and root ticks.
*/
package domain
