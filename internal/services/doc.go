// Package services defines shared utilities consumed by the publishing
// orchestrator and the analytics workflow.
//
// Key responsibilities:
//   - Context helpers that stamp release identifiers, processor names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     consistently across components.
//
// Use these helpers when wiring new logic so operational behaviour (error
// handling, observability) stays uniform across the system.
package services
