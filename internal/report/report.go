// Package report writes analytics report artifacts: immutable, timestamped,
// zstd-compressed parquet files.
package report

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// prefixFormat is the UTC timestamp layout that report filenames begin with.
const prefixFormat = "20060102-150405"

// Extension is the report artifact file extension.
const Extension = ".parquet"

// NamePattern matches a well-formed report filename.
var NamePattern = regexp.MustCompile(`^\d{8}-\d{6}_[a-z0-9-]+\.parquet$`)

// Prefix formats the batch timestamp prefix shared by every report in one run.
func Prefix(now time.Time) string {
	return now.UTC().Format(prefixFormat)
}

// FileName combines a run prefix with a processor-specific suffix.
func FileName(prefix, suffix string) string {
	return fmt.Sprintf("%s_%s%s", prefix, suffix, Extension)
}

// PathWithSuffix completes a report path from the run's path prefix and a
// processor-specific suffix.
func PathWithSuffix(pathPrefix, suffix string) string {
	return pathPrefix + "_" + suffix + Extension
}

// Write creates a parquet file at path holding the given rows. The file is
// written whole and never mutated afterwards.
func Write[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %q: %w", path, err)
	}

	writer := parquet.NewGenericWriter[T](file, parquet.Compression(&zstd.Codec{}))
	if _, err := writer.Write(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("write report rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("finalize report %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report %q: %w", path, err)
	}
	return nil
}

// Read loads every row from a parquet report. Used by tests and the CLI.
func Read[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("read report %q: %w", path, err)
	}
	return rows, nil
}
