package vr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// isSubpath is true when p is strictly below parent.
func isSubpath(p, parent string) bool {
	return strings.HasPrefix(filepath.Clean(p), filepath.Clean(parent)+string(filepath.Separator))
}

// uniquePath returns p if nothing exists there, otherwise the first of
// "p (1)", "p (2)", ... that is free.
func uniquePath(p string) string {
	if !exists(p) {
		return p
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", p, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

// validName rejects names that would escape the parent directory.
func validName(name string) error {
	switch {
	case name == "":
		return newError(KindInvalidParameter, "name", "Name must not be empty.")
	case name == "." || name == "..", strings.ContainsRune(name, filepath.Separator), strings.ContainsRune(name, '/'):
		return newError(KindInvalidParameter, "name", "Invalid name: %s", name)
	default:
		return nil
	}
}

// copyFile copies src to dst, failing if dst exists. The mode bits of src
// are kept.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}

	return out.Close()
}

// copyTree recursively copies the directory src to dst, which must not
// exist. Symlinks are recreated rather than followed.
func copyTree(src, dst string) error {
	if exists(dst) {
		return &os.PathError{Op: "copytree", Path: dst, Err: fs.ErrExist}
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, fi.Mode().Perm()|0700)

		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)

		default:
			return copyFile(p, target)
		}
	})
}

// movePath renames src to dst, falling back to copy and remove when they
// are on different devices.
func movePath(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}

	fi, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if fi.IsDir() {
		err = copyTree(src, dst)
	} else {
		err = copyFile(src, dst)
	}

	if err != nil {
		return err
	}

	return os.RemoveAll(src)
}

// removeContents deletes every entry of dir but not dir itself.
func removeContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
