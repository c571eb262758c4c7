// Package demo holds the sample robot nodes used by the CLI and by the
// end-to-end tests: a battery check, a gripper, speech through the
// blackboard, goal positions with custom port types and an asynchronous
// MoveBase action.
//
// Register installs everything on a tree.Factory; Trees serves the sample
// definitions through a memory loader.
package demo
