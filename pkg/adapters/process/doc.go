// Package process turns allow-listed external commands into asynchronous
// action nodes.
//
// A tools file declares the commands:
//
//	tools:
//	  - name: Compile
//	    command: go
//	    args: [build, ./...]
//
// Runner.Install registers one node type per tool on a tree.Factory. The
// node starts the process on its first tick, stays RUNNING until it exits
// and kills it when halted. The input port reaches the process through the
// ARBOR_INPUT environment variable; stdout and the exit status are written
// to the stdout and exit_code output ports when they are bound.
package process
