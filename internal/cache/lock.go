package cache

import (
	"fmt"
	"os"
	"strconv"
)

// Lock is an advisory, process-exclusive build lock: a single file created
// with O_EXCL so two concurrent cached `tovac build`/`watch` runs over the
// same cache directory don't race on the manifest's read-modify-write cycle.
// Deliberately not a flock(2)/LockFileEx syscall wrapper — the teacher never
// needs cross-process locking (cmd/gmx/build.go always builds into a fresh
// os.MkdirTemp dir), so there's no teacher idiom to generalize beyond "a
// marker file" and a real OS-level lock would be unreachable on whichever
// platform tovac runs on without a build-tag split per OS.
type Lock struct {
	path string
}

// Acquire creates path exclusively, failing if another process already holds
// it (the file still exists).
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("cache locked by another build (remove %s if this is stale)", path)
		}
		return nil, fmt.Errorf("acquiring cache lock: %w", err)
	}
	defer f.Close()
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}

// Holder returns the PID recorded in an existing lock file, for a
// diagnostic message when Acquire fails.
func Holder(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(trimNewline(string(data)))
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
