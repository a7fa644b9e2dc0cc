// Package daemon bundles the stage-update consumer, the scheduled release
// scanner, and the analytics run scheduler into a single lifecycle with
// flock-based locking to prevent multiple daemon instances. The instance lock
// is also what serializes analytics runs for the same processor.
package daemon
