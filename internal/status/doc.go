// Package status models the durable publishing state of a release and persists
// it in SQLite.
//
// A Record tracks one publish attempt for one release version across three
// independent stages (content, files, publishing) plus a derived overall stage.
// The overall stage is recomputed after every sub-stage write and records are
// kept forever as an audit trail; each retry or amendment creates a new record
// under a fresh attempt identifier.
package status
