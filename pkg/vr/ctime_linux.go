//go:build linux

package vr

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// statTimes returns (ctime, mtime) for p.
func statTimes(p string, fi os.FileInfo) (time.Time, time.Time) {
	var st unix.Stat_t
	if err := unix.Stat(p, &st); err != nil {
		return fi.ModTime(), fi.ModTime()
	}

	return time.Unix(st.Ctim.Unix()), fi.ModTime()
}
