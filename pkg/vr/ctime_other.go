//go:build !linux

package vr

import (
	"os"
	"time"
)

// statTimes falls back to mtime for both values where ctime is not read.
func statTimes(_ string, fi os.FileInfo) (time.Time, time.Time) {
	return fi.ModTime(), fi.ModTime()
}
