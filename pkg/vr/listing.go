package vr

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ListParams narrows and orders a child listing. Limit <= 0 means no limit.
type ListParams struct {
	Name    string
	Offset  int
	Limit   int
	Sort    string
	SortDir int
}

const (
	SortAscending  = 1
	SortDescending = -1
)

type sortFields struct {
	name      string
	lowerName string
	created   time.Time
	updated   time.Time
	size      int64
}

func (v *FolderView) sortFields() sortFields {
	return sortFields{v.Name, v.LowerName, v.Created, v.Updated, v.Size}
}

func (v *ItemView) sortFields() sortFields {
	return sortFields{v.Name, v.LowerName, v.Created, v.Updated, v.Size}
}

func lessBy(key string) (func(a, b sortFields) bool, error) {
	switch key {
	case "", "lowerName":
		return func(a, b sortFields) bool { return a.lowerName < b.lowerName }, nil
	case "name":
		return func(a, b sortFields) bool { return a.name < b.name }, nil
	case "created":
		return func(a, b sortFields) bool { return a.created.Before(b.created) }, nil
	case "updated":
		return func(a, b sortFields) bool { return a.updated.Before(b.updated) }, nil
	case "size":
		return func(a, b sortFields) bool { return a.size < b.size }, nil
	default:
		return nil, newError(KindInvalidParameter, "sort", "Invalid sort key: %s", key)
	}
}

// ListFolders returns the folder views of the immediate subdirectories of
// the target directory.
func (e *Engine) ListFolders(t *Target, p ListParams) ([]*FolderView, error) {
	names, err := e.childNames(t, p.Name, func(fi os.FileInfo) bool { return fi.IsDir() })
	if err != nil {
		return nil, err
	}

	views := make([]*FolderView, 0, len(names))
	for _, name := range names {
		v, err := AsFolder(filepath.Join(t.Path, name), t.Root)
		if err != nil {
			// Removed or replaced since the directory was read.
			continue
		}
		views = append(views, v)
	}

	if err := sortAndPage(&views, p, func(v *FolderView) sortFields { return v.sortFields() }); err != nil {
		return nil, err
	}

	return views, nil
}

// ListItems returns the item views of the regular files directly inside
// the target directory.
func (e *Engine) ListItems(t *Target, p ListParams) ([]*ItemView, error) {
	names, err := e.childNames(t, p.Name, func(fi os.FileInfo) bool { return fi.Mode().IsRegular() })
	if err != nil {
		return nil, err
	}

	views := make([]*ItemView, 0, len(names))
	for _, name := range names {
		v, err := AsItem(filepath.Join(t.Path, name), t.Root)
		if err != nil {
			continue
		}
		views = append(views, v)
	}

	if err := sortAndPage(&views, p, func(v *ItemView) sortFields { return v.sortFields() }); err != nil {
		return nil, err
	}

	return views, nil
}

// ItemFiles lists the files of a virtual item, which is always the item's
// own file.
func (e *Engine) ItemFiles(t *Target, p ListParams) ([]*FileView, error) {
	f, err := AsFile(t.Path, t.Root)
	if err != nil {
		return nil, err
	}

	if p.Offset > 0 || (p.Name != "" && p.Name != f.Name) {
		return []*FileView{}, nil
	}

	return []*FileView{f}, nil
}

type FolderDetails struct {
	NFolders int `json:"nFolders"`
	NItems   int `json:"nItems"`
}

// Details counts the immediate subdirectories and files of the target.
func (e *Engine) Details(t *Target) (*FolderDetails, error) {
	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(t.Path)
	if err != nil {
		return nil, fsError(err, "readdir", t.Path)
	}

	details := &FolderDetails{}
	for _, entry := range entries {
		fi, err := os.Stat(filepath.Join(t.Path, entry.Name()))
		switch {
		case err != nil:
			continue
		case fi.IsDir():
			details.NFolders++
		case fi.Mode().IsRegular():
			details.NItems++
		}
	}

	return details, nil
}

// childNames reads the target directory and keeps the entries accepted by
// keep. Symlinks are judged by what they point to.
func (e *Engine) childNames(t *Target, name string, keep func(fi os.FileInfo) bool) ([]string, error) {
	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(t.Path)
	if err != nil {
		return nil, fsError(err, "readdir", t.Path)
	}

	var names []string
	for _, entry := range entries {
		if name != "" && entry.Name() != name {
			continue
		}

		fi, err := os.Stat(filepath.Join(t.Path, entry.Name()))
		if err != nil || !keep(fi) {
			continue
		}

		names = append(names, entry.Name())
	}

	return names, nil
}

func sortAndPage[T any](views *[]T, p ListParams, fields func(T) sortFields) error {
	less, err := lessBy(p.Sort)
	if err != nil {
		return err
	}

	vs := *views
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := fields(vs[i]), fields(vs[j])
		if p.SortDir == SortDescending {
			return less(b, a)
		}
		return less(a, b)
	})

	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	if offset >= len(vs) {
		*views = vs[:0]
		return nil
	}

	vs = vs[offset:]
	if p.Limit > 0 && p.Limit < len(vs) {
		vs = vs[:p.Limit]
	}

	*views = vs
	return nil
}
