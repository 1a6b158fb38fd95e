package build

import "os"

// EnsureDir creates path and any missing parents. It succeeds if path is
// already a directory and fails if it exists as anything else.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &Error{Kind: KindIO, Step: "create " + path, Err: err}
	}
	return nil
}
