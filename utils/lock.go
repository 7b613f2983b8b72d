package utils

import (
	"fmt"
	"os"
)

// AcquireInstanceLock writes an exclusive pid file so a second poller cannot
// start against the same stores. Returns a release func for shutdown.
// A stale file from a crashed process must be removed by the operator; the
// error message says which pid held it.
func AcquireInstanceLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			held, _ := os.ReadFile(path)
			return nil, fmt.Errorf("instance lock %s already held (pid %s)", path, string(held))
		}
		return nil, fmt.Errorf("failed to create instance lock: %w", err)
	}
	fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()

	return func() { os.Remove(path) }, nil
}
