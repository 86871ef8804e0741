// Package executor runs the duplicate-resolution pipeline: per group it
// consolidates metadata onto the winner, transfers album memberships, backs
// up every loser, and batch-deletes only what was safely backed up. All
// remote calls go through a shared rate gate.
package executor
