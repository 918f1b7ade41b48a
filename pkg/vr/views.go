package vr

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/vrid"
)

const (
	ModelFolder = "folder"
	ModelItem   = "item"
	ModelFile   = "file"
	ModelUpload = "upload"
)

// FolderView is the document returned for folders, both native records
// and directories synthesized from disk.
type FolderView struct {
	ID               string               `json:"_id"`
	ModelType        string               `json:"_modelType"`
	Name             string               `json:"name"`
	LowerName        string               `json:"lowerName"`
	Description      string               `json:"description"`
	ParentID         string               `json:"parentId"`
	ParentCollection string               `json:"parentCollection"`
	CreatorID        *string              `json:"creatorId"`
	Public           bool                 `json:"public"`
	Access           mcmodel.AccessList   `json:"access"`
	IsMapping        bool                 `json:"isMapping,omitempty"`
	FsPath           string               `json:"fsPath,omitempty"`
	Size             int64                `json:"size"`
	Created          time.Time            `json:"created"`
	Updated          time.Time            `json:"updated"`
	AccessLevel      *mcmodel.AccessLevel `json:"_accessLevel,omitempty"`
}

type ItemView struct {
	ID          string    `json:"_id"`
	ModelType   string    `json:"_modelType"`
	Name        string    `json:"name"`
	LowerName   string    `json:"lowerName"`
	Description string    `json:"description"`
	FolderID    string    `json:"folderId"`
	CreatorID   *string   `json:"creatorId"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

type FileView struct {
	ID           string    `json:"_id"`
	ModelType    string    `json:"_modelType"`
	Name         string    `json:"name"`
	ItemID       string    `json:"itemId"`
	MimeType     string    `json:"mimeType"`
	Exts         []string  `json:"exts"`
	Size         int64     `json:"size"`
	AssetstoreID *string   `json:"assetstoreId"`
	CreatorID    string    `json:"creatorId"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

type UploadView struct {
	*mcmodel.Upload
	ModelType string `json:"_modelType"`
}

// FolderViewFromRecord renders a native folder record.
func FolderViewFromRecord(f *mcmodel.Folder) *FolderView {
	creator := f.CreatorID
	return &FolderView{
		ID:               f.ID,
		ModelType:        ModelFolder,
		Name:             f.Name,
		LowerName:        f.LowerName,
		Description:      f.Description,
		ParentID:         f.ParentID,
		ParentCollection: f.ParentCollection,
		CreatorID:        &creator,
		Public:           f.Public,
		Access:           f.AccessList(),
		IsMapping:        f.IsMapping,
		FsPath:           f.FsPath,
		Size:             f.Size,
		Created:          f.CreatedAt,
		Updated:          f.UpdatedAt,
	}
}

// ItemViewFromRecord renders a native item record.
func ItemViewFromRecord(i *mcmodel.Item) *ItemView {
	creator := i.CreatorID
	return &ItemView{
		ID:          i.ID,
		ModelType:   ModelItem,
		Name:        i.Name,
		LowerName:   i.LowerName,
		Description: i.Description,
		FolderID:    i.FolderID,
		CreatorID:   &creator,
		Size:        i.Size,
		Created:     i.CreatedAt,
		Updated:     i.UpdatedAt,
	}
}

// Filter hides what the user may not see. Only site admins see the
// filesystem path behind a mapping.
func (v *FolderView) Filter(user *mcmodel.User, level mcmodel.AccessLevel) *FolderView {
	filtered := *v
	if !user.IsAdmin() {
		filtered.FsPath = ""
	}
	filtered.AccessLevel = &level
	return &filtered
}

// AsFolder synthesizes the folder view of the directory p under root. The
// mapping root directory itself is answered with the root record.
func AsFolder(p string, root *mcmodel.Folder) (*FolderView, error) {
	p = filepath.Clean(p)
	fi, err := os.Stat(p)
	if err != nil || !fi.IsDir() {
		return nil, errInvalidObjectID(vrid.Encode(p, root.ID))
	}

	if isRootPath(p, root) {
		return FolderViewFromRecord(root), nil
	}

	created, updated := statTimes(p, fi)
	name := filepath.Base(p)
	return &FolderView{
		ID:               vrid.Encode(p, root.ID),
		ModelType:        ModelFolder,
		Name:             name,
		LowerName:        strings.ToLower(name),
		ParentID:         parentID(p, root),
		ParentCollection: mcmodel.ParentCollectionFolder,
		Public:           root.Public,
		Access:           root.AccessList(),
		Size:             fi.Size(),
		Created:          created,
		Updated:          updated,
	}, nil
}

// AsItem synthesizes the item view of the regular file p under root.
func AsItem(p string, root *mcmodel.Folder) (*ItemView, error) {
	p = filepath.Clean(p)
	fi, err := os.Stat(p)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, errInvalidObjectID(vrid.Encode(p, root.ID))
	}

	created, updated := statTimes(p, fi)
	name := filepath.Base(p)
	return &ItemView{
		ID:        vrid.Encode(p, root.ID),
		ModelType: ModelItem,
		Name:      name,
		LowerName: strings.ToLower(name),
		FolderID:  parentID(p, root),
		Size:      fi.Size(),
		Created:   created,
		Updated:   updated,
	}, nil
}

// AsFile synthesizes the file view of p. A virtual item has exactly one
// file and both share the same identifier.
func AsFile(p string, root *mcmodel.Folder) (*FileView, error) {
	p = filepath.Clean(p)
	fi, err := os.Stat(p)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, errInvalidObjectID(vrid.Encode(p, root.ID))
	}

	created, updated := statTimes(p, fi)
	id := vrid.Encode(p, root.ID)
	return &FileView{
		ID:        id,
		ModelType: ModelFile,
		Name:      filepath.Base(p),
		ItemID:    id,
		MimeType:  detectMimeType(p),
		Exts:      extensions(filepath.Base(p)),
		Size:      fi.Size(),
		CreatorID: root.CreatorID,
		Created:   created,
		Updated:   updated,
	}, nil
}

func uploadView(u *mcmodel.Upload) *UploadView {
	return &UploadView{Upload: u, ModelType: ModelUpload}
}

// FolderID is the identifier clients use for the directory p: the root's
// own id for the mapping directory, an encoded id below it.
func FolderID(p string, root *mcmodel.Folder) string {
	if isRootPath(p, root) {
		return root.ID
	}

	return vrid.Encode(p, root.ID)
}

func parentID(p string, root *mcmodel.Folder) string {
	return FolderID(filepath.Dir(p), root)
}

func isRootPath(p string, root *mcmodel.Folder) bool {
	return filepath.Clean(p) == filepath.Clean(root.FsPath)
}

// extensions follows the usual suffix rules: "a.tar.gz" has [tar gz],
// ".bashrc" and "name." have none.
func extensions(name string) []string {
	exts := []string{}
	if strings.HasSuffix(name, ".") {
		return exts
	}

	parts := strings.Split(strings.TrimLeft(name, "."), ".")
	for _, ext := range parts[1:] {
		if ext != "" {
			exts = append(exts, ext)
		}
	}

	return exts
}

func detectMimeType(p string) string {
	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		return "application/octet-stream"
	}

	return mtype.String()
}
