// Package main hosts the statspub CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into status
// store queries, publish scheduling operations, analytics runs, and
// configuration scaffolding. It centralizes configuration resolution and
// store wiring so subcommands can focus on user experience instead of
// plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
