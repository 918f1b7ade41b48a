package vr

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/mitchellh/go-homedir"
	pkgerrors "github.com/pkg/errors"
)

// ErrNative is returned for operations that address the mapping root
// record rather than anything below it. Callers hand those to the native
// handler.
var ErrNative = errors.New("operation belongs to the native folder handler")

// CreateFolder makes the directory name inside the target directory.
func (e *Engine) CreateFolder(t *Target, name string) (*FolderView, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	p := filepath.Join(t.Path, name)
	if err := os.Mkdir(p, 0755); err != nil {
		return nil, e.observe("create_folder", fsError(err, "mkdir", p))
	}

	logOp("create_folder", p, t.Root)
	v, err := AsFolder(p, t.Root)
	return v, e.observe("create_folder", err)
}

// CreateItem creates the empty file name inside the target directory.
func (e *Engine) CreateItem(t *Target, name string) (*ItemView, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	p := filepath.Join(t.Path, name)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, e.observe("create_item", fsError(err, "create", p))
	}
	_ = f.Close()

	logOp("create_item", p, t.Root)
	v, err := AsItem(p, t.Root)
	return v, e.observe("create_item", err)
}

// UpdateFolder renames the target directory and, when parentID is set,
// moves it under that folder. Renaming to the current name in the
// current parent succeeds without touching the filesystem.
func (e *Engine) UpdateFolder(t *Target, name, parentID string) (*FolderView, error) {
	if isRootPath(t.Path, t.Root) {
		return nil, ErrNative
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	dest, destRoot, err := e.relocation(t, name, parentID)
	if err != nil {
		return nil, err
	}

	if dest != t.Path {
		if isSubpath(dest, t.Path) {
			return nil, newError(KindInvalidParameter, "parentId", "A folder cannot be moved into itself.")
		}

		if err := e.move(t.Path, dest, destRoot); err != nil {
			return nil, e.observe("move_folder", err)
		}
	}

	v, err := AsFolder(dest, destRoot)
	return v, e.observe("move_folder", err)
}

// UpdateItem renames and optionally moves the target file.
func (e *Engine) UpdateItem(t *Target, name, folderID string) (*ItemView, error) {
	if _, err := AsItem(t.Path, t.Root); err != nil {
		return nil, err
	}

	dest, destRoot, err := e.relocation(t, name, folderID)
	if err != nil {
		return nil, err
	}

	if dest != t.Path {
		if err := e.move(t.Path, dest, destRoot); err != nil {
			return nil, e.observe("move_item", err)
		}
	}

	v, err := AsItem(dest, destRoot)
	return v, e.observe("move_item", err)
}

// UpdateFile renames the target file in place.
func (e *Engine) UpdateFile(t *Target, name string) (*FileView, error) {
	if _, err := AsFile(t.Path, t.Root); err != nil {
		return nil, err
	}

	dest, destRoot, err := e.relocation(t, name, "")
	if err != nil {
		return nil, err
	}

	if dest != t.Path {
		if err := e.move(t.Path, dest, destRoot); err != nil {
			return nil, e.observe("move_file", err)
		}
	}

	v, err := AsFile(dest, destRoot)
	return v, e.observe("move_file", err)
}

// relocation computes where an update moves the target to. A destination
// parent outside any mapping fails with NotAMapping; a different parent
// needs WRITE on its root.
func (e *Engine) relocation(t *Target, name, parentID string) (string, *mcmodel.Folder, error) {
	if name == "" {
		name = filepath.Base(t.Path)
	}

	if err := validName(name); err != nil {
		return "", nil, err
	}

	destDir, destRoot := filepath.Dir(t.Path), t.Root

	if parentID != "" {
		loc, err := e.resolver.LocateFolderID(parentID)
		switch {
		case err != nil:
			return "", nil, err
		case loc == nil:
			return "", nil, errNotAMapping(parentID)
		}

		if loc.Path != destDir {
			dt, err := e.resolver.Authorize(loc, t.User, mcmodel.AccessWrite)
			if err != nil {
				return "", nil, err
			}

			if _, err := AsFolder(dt.Path, dt.Root); err != nil {
				return "", nil, err
			}

			destDir, destRoot = dt.Path, dt.Root
		}
	}

	return filepath.Join(destDir, name), destRoot, nil
}

// move relocates src to dest after checking nothing of either kind
// occupies dest.
func (e *Engine) move(src, dest string, destRoot *mcmodel.Folder) error {
	if exists(dest) {
		return errAlreadyExists()
	}

	if err := movePath(src, dest); err != nil {
		return fsError(err, "move", dest)
	}

	log.WithFields(log.Fields{"op": "move", "from": src, "to": dest, "root": destRoot.ID}).Info("Moved")
	return nil
}

// DeleteFolder removes the target directory and everything below it.
func (e *Engine) DeleteFolder(t *Target) error {
	if isRootPath(t.Path, t.Root) {
		return ErrNative
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return err
	}

	if err := os.RemoveAll(t.Path); err != nil {
		return e.observe("delete_folder", fsError(err, "rmtree", t.Path))
	}

	logOp("delete_folder", t.Path, t.Root)
	return e.observe("delete_folder", nil)
}

// DeleteContents empties the target directory but keeps it.
func (e *Engine) DeleteContents(t *Target) error {
	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return err
	}

	if err := removeContents(t.Path); err != nil {
		return e.observe("delete_contents", fsError(err, "remove", t.Path))
	}

	logOp("delete_contents", t.Path, t.Root)
	return e.observe("delete_contents", nil)
}

// DeleteItem unlinks the target file. Files and items share a path so this
// also serves file deletes.
func (e *Engine) DeleteItem(t *Target) error {
	if _, err := AsItem(t.Path, t.Root); err != nil {
		return err
	}

	if err := os.Remove(t.Path); err != nil {
		return e.observe("delete_item", fsError(err, "unlink", t.Path))
	}

	logOp("delete_item", t.Path, t.Root)
	return e.observe("delete_item", nil)
}

// SetMapping makes a native folder a mapping root for fsPath, creating the
// directory if needed. Only site admins may change mappings.
func (e *Engine) SetMapping(user *mcmodel.User, folderID string, isMapping bool, fsPath string) (*mcmodel.Folder, error) {
	if !user.IsAdmin() {
		return nil, newError(KindAccessDenied, "", "Administrator access required.")
	}

	if isMapping {
		expanded, err := homedir.Expand(fsPath)
		if err != nil || !filepath.IsAbs(expanded) {
			return nil, newError(KindInvalidParameter, "fsPath", "fsPath must be an absolute path: %s", fsPath)
		}
		fsPath = filepath.Clean(expanded)

		if err := os.MkdirAll(fsPath, 0755); err != nil {
			return nil, fsError(err, "mkdir", fsPath)
		}
	}

	folder, err := e.stors.FolderStor.SetMapping(folderID, isMapping, fsPath)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return nil, newError(KindInvalidResource, "id", "No such folder: %s", folderID)
	case errors.Is(err, stor.ErrHasChildren):
		return nil, newError(KindInvalidParameter, "isMapping", "Folder %s has children and cannot be a mapping.", folderID)
	case err != nil:
		return nil, pkgerrors.Wrapf(err, "setting mapping on %s", folderID)
	}

	log.WithFields(log.Fields{"op": "set_mapping", "folder": folderID, "fsPath": fsPath, "mapping": isMapping}).Info("Mapping updated")
	return folder, nil
}

func logOp(op, p string, root *mcmodel.Folder) {
	log.WithFields(log.Fields{"op": op, "path": p, "root": root.ID}).Info("Filesystem updated")
}
