// Package supervisor starts the processes of a launch plan and watches them.
//
// Processes start one at a time in plan order, each with its merged
// parameters written to a node-scoped YAML file. They are then supervised
// together: the first process to fail stops the others, and cancelling the
// context stops all of them.
package supervisor
