package vr

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/saracen/walker"
)

// ZipEntry is one file of a folder archive. Content is only read when the
// entry is opened.
type ZipEntry struct {
	Name    string
	Path    string
	ModTime time.Time
	Mode    os.FileMode
}

func (e ZipEntry) Open() (io.ReadCloser, error) {
	return os.Open(e.Path)
}

// ZipIterator walks the entries of a folder archive in name order. It is
// not restartable.
type ZipIterator struct {
	entries []ZipEntry
	next    int
	current ZipEntry
}

// NewZipIterator enumerates the regular files under dir. Entries are named
// by their slash separated path relative to dir.
func NewZipIterator(dir string) (*ZipIterator, error) {
	var (
		mu      sync.Mutex
		entries []ZipEntry
	)

	walkFn := func(pathname string, fi os.FileInfo) error {
		if fi.Mode()&os.ModeSymlink != 0 {
			// Include links to files, as if they were the file.
			target, err := os.Stat(pathname)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
			fi = target
		}

		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, pathname)
		if err != nil {
			return err
		}

		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, ZipEntry{
			Name:    filepath.ToSlash(rel),
			Path:    pathname,
			ModTime: fi.ModTime(),
			Mode:    fi.Mode().Perm(),
		})

		return nil
	}

	if err := walker.Walk(dir, walkFn); err != nil {
		return nil, fsError(err, "walk", dir)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return &ZipIterator{entries: entries}, nil
}

func (it *ZipIterator) Next() bool {
	if it.next >= len(it.entries) {
		return false
	}

	it.current = it.entries[it.next]
	it.next++
	return true
}

func (it *ZipIterator) Entry() ZipEntry {
	return it.current
}

func (it *ZipIterator) Len() int {
	return len(it.entries)
}

// ZipDownload is a folder archive ready to stream.
type ZipDownload struct {
	Name     string
	Entries  *ZipIterator
	recorder Recorder
}

// PrepareZip enumerates the target directory for a zip download.
func (e *Engine) PrepareZip(t *Target) (*ZipDownload, error) {
	v, err := AsFolder(t.Path, t.Root)
	if err != nil {
		return nil, err
	}

	it, err := NewZipIterator(t.Path)
	if err != nil {
		return nil, err
	}

	return &ZipDownload{Name: v.Name, Entries: it, recorder: e.metrics}, nil
}

// Stream writes the archive into w. Entries are stored uncompressed and
// each file is closed before the next one is opened.
func (z *ZipDownload) Stream(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	for z.Entries.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := writeZipEntry(zw, z.Entries.Entry(), z.recorder); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, entry ZipEntry, recorder Recorder) error {
	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Store,
		Modified: entry.ModTime,
	}
	header.SetMode(entry.Mode)

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fsError(err, "open", entry.Path)
	}
	defer src.Close()

	n, err := io.Copy(dst, src)
	if recorder != nil {
		recorder.AddBytes("zip", n)
	}

	return err
}
