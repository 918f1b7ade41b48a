package vr

import (
	"errors"
	"path/filepath"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/vrid"
	pkgerrors "github.com/pkg/errors"
)

// CopyItem copies the target file into folderID (default: its own
// folder). The copy never overwrites: a taken name gets " (n)" appended.
func (e *Engine) CopyItem(t *Target, name, folderID string) (*ItemView, error) {
	if _, err := AsItem(t.Path, t.Root); err != nil {
		return nil, err
	}

	dest, err := e.copyDestination(t, folderID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = filepath.Base(t.Path)
	}

	if err := validName(name); err != nil {
		return nil, err
	}

	p := uniquePath(filepath.Join(dest.Path, name))
	if err := copyFile(t.Path, p); err != nil {
		return nil, e.observe("copy_item", fsError(err, "copy", p))
	}

	log.WithFields(log.Fields{"op": "copy_item", "from": t.Path, "to": p, "root": dest.Root.ID}).Info("Copied")
	v, err := AsItem(p, dest.Root)
	return v, e.observe("copy_item", err)
}

// CopyFolder recursively copies the target directory into parentID
// (default: its own parent). Unlike items, a name collision is an error.
// Mapping roots themselves cannot be copied.
func (e *Engine) CopyFolder(t *Target, name, parentID string) (*FolderView, error) {
	if isRootPath(t.Path, t.Root) {
		return nil, newError(KindMappingCopyForbidden, "", "Copying mappings is not allowed.")
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	dest, err := e.copyDestination(t, parentID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = filepath.Base(t.Path)
	}

	if err := validName(name); err != nil {
		return nil, err
	}

	p := filepath.Join(dest.Path, name)
	switch {
	case exists(p):
		return nil, errAlreadyExists()
	case isSubpath(p, t.Path):
		return nil, newError(KindInvalidParameter, "parentId", "A folder cannot be copied into itself.")
	}

	if err := copyTree(t.Path, p); err != nil {
		return nil, e.observe("copy_folder", fsError(err, "copytree", p))
	}

	log.WithFields(log.Fields{"op": "copy_folder", "from": t.Path, "to": p, "root": dest.Root.ID}).Info("Copied")
	v, err := AsFolder(p, dest.Root)
	return v, e.observe("copy_folder", err)
}

// copyDestination resolves the directory a copy lands in and checks WRITE
// on its root. Without an explicit id the source's own directory is used.
func (e *Engine) copyDestination(t *Target, destID string) (*Target, error) {
	loc := &Location{Path: filepath.Dir(t.Path), RootID: t.Root.ID}

	if destID != "" {
		var err error
		if loc, err = e.locateCopyDestination(destID); err != nil {
			return nil, err
		}
	}

	dest, err := e.resolver.Authorize(loc, t.User, mcmodel.AccessWrite)
	if err != nil {
		return nil, err
	}

	if _, err := AsFolder(dest.Path, dest.Root); err != nil {
		return nil, err
	}

	return dest, nil
}

func (e *Engine) locateCopyDestination(destID string) (*Location, error) {
	if vrid.IsVirtual(destID) {
		return e.resolver.LocateFolderID(destID)
	}

	folder, err := e.stors.FolderStor.GetFolderByID(destID)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return nil, newError(KindInvalidResource, "id", "No such folder: %s", destID)
	case err != nil:
		return nil, pkgerrors.Wrapf(err, "loading folder %s", destID)
	case !folder.IsMappingRoot():
		return nil, errNotAMapping(destID)
	}

	return &Location{Path: filepath.Clean(folder.FsPath), RootID: folder.ID}, nil
}
