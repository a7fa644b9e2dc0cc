// Package publisher implements the orchestration policy around release
// publishing: creating publish attempts, superseding stale ones, applying
// reported stage transitions, and gating the publishing stage on content and
// file completion.
//
// The policy lives here rather than in the status package so the state machine
// stays a pure record type; all retry and supersession decisions are made by
// this orchestrator.
package publisher
