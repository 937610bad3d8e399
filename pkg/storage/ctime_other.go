//go:build !darwin && !windows

package storage

import (
	"os"
	"time"
)

// createdTime falls back to the modification time where the platform's stat
// does not report a birth time.
func createdTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
