package vr

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/vrid"
	pkgerrors "github.com/pkg/errors"
)

// Params carries the identifiers a request may use to name its target.
type Params struct {
	ID         string
	ParentID   string
	ParentType string
	FolderID   string
	ItemID     string
	UploadID   string
}

// Location is a located but not yet authorized filesystem target.
type Location struct {
	Path   string
	RootID string
	Upload *mcmodel.Upload
}

// Target is an authorized filesystem target: the path, the mapping root it
// lives under (loaded at the required level) and the requesting user.
type Target struct {
	Path   string
	Root   *mcmodel.Folder
	User   *mcmodel.User
	Upload *mcmodel.Upload
}

type Resolver struct {
	folders stor.FolderStor
	uploads stor.UploadStor
}

func NewResolver(folders stor.FolderStor, uploads stor.UploadStor) *Resolver {
	return &Resolver{folders: folders, uploads: uploads}
}

// Resolve locates and then authorizes. A nil Target with a nil error means
// the request does not address a virtual resource.
func (r *Resolver) Resolve(p Params, user *mcmodel.User, level mcmodel.AccessLevel) (*Target, error) {
	loc, err := r.Locate(p)
	if err != nil || loc == nil {
		return nil, err
	}

	return r.Authorize(loc, user, level)
}

// Locate finds the filesystem path a request addresses without checking
// access. It returns nil when the request is for a native resource.
func (r *Resolver) Locate(p Params) (*Location, error) {
	var upload *mcmodel.Upload

	if p.UploadID != "" {
		u, err := r.uploads.GetUploadByID(p.UploadID)
		switch {
		case errors.Is(err, stor.ErrNotFound):
			return nil, nil
		case err != nil:
			return nil, pkgerrors.Wrapf(err, "loading upload %s", p.UploadID)
		}

		upload = u
		p = Params{ParentID: u.ParentID, ParentType: u.ParentType}
		if u.ParentID == "" {
			p = Params{ID: u.FileID}
		}
	}

	id, nativeFolderOK := pickID(p)
	if id == "" {
		return nil, nil
	}

	loc, err := r.locateID(id, nativeFolderOK)
	if err != nil || loc == nil {
		return nil, err
	}

	loc.Upload = upload
	return loc, nil
}

// LocateFolderID locates a destination folder id, virtual or a mapping root.
func (r *Resolver) LocateFolderID(id string) (*Location, error) {
	return r.locateID(id, true)
}

// pickID applies the precedence explicit id, parentId, folderId, itemId.
// The second result says whether a native id may be looked up as a folder.
func pickID(p Params) (string, bool) {
	switch {
	case p.ID != "":
		return p.ID, true
	case p.ParentID != "":
		return p.ParentID, p.ParentType == "" || p.ParentType == mcmodel.ParentCollectionFolder
	case p.FolderID != "":
		return p.FolderID, true
	default:
		return p.ItemID, false
	}
}

func (r *Resolver) locateID(id string, nativeFolderOK bool) (*Location, error) {
	var loc *Location

	switch {
	case vrid.IsVirtual(id):
		p, rootID, err := vrid.Decode(id)
		if err != nil {
			return nil, &Error{Kind: KindMalformedIdentifier, Field: "id", Message: "Invalid virtual resource id: " + id, Err: err}
		}
		loc = &Location{Path: p, RootID: rootID}

	case nativeFolderOK:
		folder, err := r.folders.GetFolderByID(id)
		switch {
		case errors.Is(err, stor.ErrNotFound):
			return nil, nil
		case err != nil:
			return nil, pkgerrors.Wrapf(err, "loading folder %s", id)
		case !folder.IsMappingRoot():
			return nil, nil
		}
		loc = &Location{Path: folder.FsPath, RootID: folder.ID}

	default:
		return nil, nil
	}

	if !filepath.IsAbs(loc.Path) {
		log.WithFields(log.Fields{"id": id, "path": loc.Path}).Warn("Ignoring relative mapping path")
		return nil, nil
	}

	loc.Path = filepath.Clean(loc.Path)
	return loc, nil
}

// Authorize loads the location's root at level for user. The path must lie
// inside the root's fsPath.
func (r *Resolver) Authorize(loc *Location, user *mcmodel.User, level mcmodel.AccessLevel) (*Target, error) {
	root, err := r.LoadRoot(loc.RootID, user, level)
	if err != nil {
		return nil, err
	}

	if !withinRoot(loc.Path, root) {
		return nil, errInvalidObjectID(vrid.Encode(loc.Path, root.ID))
	}

	return &Target{Path: loc.Path, Root: root, User: user, Upload: loc.Upload}, nil
}

// LoadRoot loads a mapping root and checks user holds level on it.
func (r *Resolver) LoadRoot(rootID string, user *mcmodel.User, level mcmodel.AccessLevel) (*mcmodel.Folder, error) {
	root, err := r.folders.GetFolderByID(rootID)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return nil, newError(KindInvalidResource, "id", "No such folder: %s", rootID)
	case err != nil:
		return nil, pkgerrors.Wrapf(err, "loading root %s", rootID)
	}

	if !root.HasAccess(user, level) {
		return nil, newError(KindAccessDenied, "", "%s access denied for folder %s.", capitalize(level.String()), rootID)
	}

	if !root.IsMappingRoot() {
		return nil, errNotAMapping(rootID)
	}

	return root, nil
}

func withinRoot(p string, root *mcmodel.Folder) bool {
	rootPath := filepath.Clean(root.FsPath)
	rel, err := filepath.Rel(rootPath, p)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
