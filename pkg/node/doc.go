/*
Package node defines the polymorphic unit of behavior of a tree.

Every node implements Node: a Tick that returns the node's Status for the current
cycle and a Halt that cancels a RUNNING node and resets it to IDLE.

Leaves come in two flavors:

  - Synchronous leaves (SimpleAction, Condition) run a function on every tick
    and must return SUCCESS, FAILURE or SKIPPED.
  - Stateful leaves (StatefulAction) drive a StatefulBehavior through an explicit
    NotStarted/Running/Halted state machine: OnStart on activation, OnRunning while
    RUNNING, OnHalted exactly once when cancelled from above.

Nodes exchange data through their ports. GetInput and SetOutput resolve a port
binding against the node's blackboard on every call.
*/
package node
