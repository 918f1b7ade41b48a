package vr

import (
	"errors"
	"path"
	"path/filepath"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	pkgerrors "github.com/pkg/errors"
)

// RootPathEntry is one ancestor in a root path listing.
type RootPathEntry struct {
	Type   string      `json:"type"`
	Object interface{} `json:"object"`
}

// RootPath lists the ancestors of the target, outermost first: the native
// user or collection, native folders down to the mapping root, then the
// directories between the root and the target. The target itself is not
// included. The mapping root directory has a native record and is left to
// the native handler.
func (e *Engine) RootPath(t *Target) ([]RootPathEntry, error) {
	if isRootPath(t.Path, t.Root) {
		return nil, ErrNative
	}

	if !exists(t.Path) {
		return nil, errInvalidObjectID(FolderID(t.Path, t.Root))
	}

	entries, err := e.nativeAncestors(t.Root, t.User)
	if err != nil {
		return nil, err
	}

	level := t.Root.LevelFor(t.User)
	entries = append(entries, RootPathEntry{Type: ModelFolder, Object: FolderViewFromRecord(t.Root).Filter(t.User, level)})

	for _, dir := range virtualAncestors(t.Path, t.Root) {
		v, err := AsFolder(dir, t.Root)
		if err != nil {
			return nil, err
		}
		entries = append(entries, RootPathEntry{Type: ModelFolder, Object: v.Filter(t.User, level)})
	}

	return entries, nil
}

// ResourcePath is the logical path of the target, for example
// "/collection/data/mapped/sub/file.txt". kind must agree with what is on
// disk.
func (e *Engine) ResourcePath(t *Target, kind string) (string, error) {
	var err error
	switch kind {
	case ModelFolder:
		_, err = AsFolder(t.Path, t.Root)
	case ModelItem, ModelFile:
		_, err = AsItem(t.Path, t.Root)
	default:
		err = errInvalidObjectID(kind)
	}

	if err != nil {
		return "", newError(KindInvalidParameter, "type", "Invalid resource id.")
	}

	entries, err := e.nativeAncestors(t.Root, t.User)
	if err != nil {
		return "", err
	}

	segments := []string{"/"}
	for _, entry := range entries {
		switch v := entry.Object.(type) {
		case *mcmodel.User:
			segments = append(segments, entry.Type, v.Login)
		case *mcmodel.Collection:
			segments = append(segments, entry.Type, v.Name)
		case *FolderView:
			segments = append(segments, v.Name)
		}
	}
	segments = append(segments, t.Root.Name)

	rel, err := filepath.Rel(filepath.Clean(t.Root.FsPath), t.Path)
	if err != nil {
		return "", err
	}

	return path.Join(append(segments, filepath.ToSlash(rel))...), nil
}

// nativeAncestors walks the record hierarchy up from root and returns its
// ancestors outermost first, root excluded.
func (e *Engine) nativeAncestors(root *mcmodel.Folder, user *mcmodel.User) ([]RootPathEntry, error) {
	var entries []RootPathEntry
	parentID, parentCollection := root.ParentID, root.ParentCollection

	for seen := 0; parentID != ""; seen++ {
		if seen > maxFolderDepth {
			return nil, newError(KindInternal, "", "Folder hierarchy of %s is too deep.", root.ID)
		}

		var entry RootPathEntry
		switch parentCollection {
		case mcmodel.ParentCollectionUser:
			u, err := e.stors.UserStor.GetUserByID(parentID)
			if err != nil {
				return nil, ancestorError(err, parentCollection, parentID)
			}
			entry, parentID = RootPathEntry{Type: parentCollection, Object: u}, ""

		case mcmodel.ParentCollectionCollection:
			c, err := e.stors.CollectionStor.GetCollectionByID(parentID)
			if err != nil {
				return nil, ancestorError(err, parentCollection, parentID)
			}
			entry, parentID = RootPathEntry{Type: parentCollection, Object: c}, ""

		default:
			f, err := e.stors.FolderStor.GetFolderByID(parentID)
			if err != nil {
				return nil, ancestorError(err, ModelFolder, parentID)
			}
			entry = RootPathEntry{Type: ModelFolder, Object: FolderViewFromRecord(f).Filter(user, f.LevelFor(user))}
			parentID, parentCollection = f.ParentID, f.ParentCollection
		}

		entries = append(entries, entry)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

const maxFolderDepth = 1024

func ancestorError(err error, kind, id string) error {
	if errors.Is(err, stor.ErrNotFound) {
		return newError(KindInvalidResource, "id", "No such %s: %s", kind, id)
	}

	return pkgerrors.Wrapf(err, "loading %s %s", kind, id)
}

// virtualAncestors returns the directories strictly between the mapping
// root and p, outermost first.
func virtualAncestors(p string, root *mcmodel.Folder) []string {
	var dirs []string
	for dir := filepath.Dir(p); !isRootPath(dir, root) && withinRoot(dir, root); dir = filepath.Dir(dir) {
		dirs = append([]string{dir}, dirs...)
	}

	return dirs
}
