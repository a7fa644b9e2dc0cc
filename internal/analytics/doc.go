// Package analytics implements the batch file-processing workflow that turns
// dropped request-log files into aggregated report artifacts.
//
// Each processor owns a directory quad (source, processing, failures, reports)
// under the configured analytics base directory. A run claims the source batch
// into the processing directory, ingests each file into a per-run analytical
// engine with per-file failure isolation, writes a timestamped parquet report,
// and removes the processing directory. Files left in the processing directory
// by a crashed run are picked up by the next run.
package analytics
