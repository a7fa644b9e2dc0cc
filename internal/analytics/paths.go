package analytics

import "path/filepath"

// Directories is the per-processor directory quad. All four paths are composed
// from the analytics base directory and the processor's sub-path.
type Directories struct {
	Source     string
	Processing string
	Failures   string
	Reports    string
}

// DirectoriesFor composes the directory quad for a processor sub-path.
func DirectoriesFor(baseDir, subPath string) Directories {
	root := filepath.Join(baseDir, subPath)
	return Directories{
		Source:     filepath.Join(root, "source"),
		Processing: filepath.Join(root, "processing"),
		Failures:   filepath.Join(root, "failures"),
		Reports:    filepath.Join(root, "reports"),
	}
}
