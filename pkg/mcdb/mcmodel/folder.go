package mcmodel

import (
	"strings"
	"time"
)

const (
	ParentCollectionFolder     = "folder"
	ParentCollectionCollection = "collection"
	ParentCollectionUser       = "user"
)

// Folder is a native folder record. A folder with IsMapping set and a
// non-empty FsPath is a mapping root: everything below it lives on disk
// under FsPath rather than in the record store.
type Folder struct {
	ID               string         `json:"_id" gorm:"primaryKey"`
	Name             string         `json:"name"`
	LowerName        string         `json:"lowerName" gorm:"index;size:191"`
	Description      string         `json:"description"`
	ParentID         string         `json:"parentId" gorm:"index;size:191"`
	ParentCollection string         `json:"parentCollection"`
	CreatorID        string         `json:"creatorId"`
	Public           bool           `json:"public"`
	IsMapping        bool           `json:"isMapping"`
	FsPath           string         `json:"fsPath,omitempty"`
	Size             int64          `json:"size"`
	Access           []FolderAccess `json:"-" gorm:"foreignKey:FolderID"`
	CreatedAt        time.Time      `json:"created"`
	UpdatedAt        time.Time      `json:"updated"`
}

func (Folder) TableName() string {
	return "folders"
}

// IsMappingRoot is true when the folder maps a filesystem directory.
func (f *Folder) IsMappingRoot() bool {
	return f != nil && f.IsMapping && f.FsPath != ""
}

func (f *Folder) SetName(name string) {
	f.Name = name
	f.LowerName = strings.ToLower(name)
}

func (f *Folder) AccessList() AccessList {
	users := make([]FolderAccess, 0, len(f.Access))
	users = append(users, f.Access...)
	return AccessList{Users: users, Groups: []FolderAccess{}}
}

// LevelFor computes the effective access a user has on the folder.
func (f *Folder) LevelFor(user *User) AccessLevel {
	if user.IsAdmin() {
		return AccessOwn
	}

	level := AccessNone
	if f.Public {
		level = AccessRead
	}

	if user == nil {
		return level
	}

	if user.ID == f.CreatorID {
		return AccessOwn
	}

	for _, a := range f.Access {
		if a.UserID != user.ID {
			continue
		}

		granted := a.Level
		if granted >= AccessAdmin {
			granted = AccessOwn
		}

		if granted > level {
			level = granted
		}
	}

	return level
}

// HasAccess reports whether user holds at least level on the folder.
func (f *Folder) HasAccess(user *User, level AccessLevel) bool {
	return f.LevelFor(user) >= level
}
