package mcmodel

import (
	"fmt"
	"strings"
)

// AccessLevel orders the permissions a user can hold on a resource.
// A higher level implies every lower one.
type AccessLevel int

const (
	AccessNone  AccessLevel = -1
	AccessRead  AccessLevel = 0
	AccessWrite AccessLevel = 1
	AccessAdmin AccessLevel = 2

	// AccessOwn is required for destructive bulk operations. Creators,
	// site admins and holders of an ADMIN grant satisfy it.
	AccessOwn AccessLevel = 3
)

func (l AccessLevel) String() string {
	switch l {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessAdmin:
		return "admin"
	case AccessOwn:
		return "own"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	switch strings.ToLower(s) {
	case "read", "0":
		return AccessRead, nil
	case "write", "1":
		return AccessWrite, nil
	case "admin", "2":
		return AccessAdmin, nil
	case "own", "3":
		return AccessOwn, nil
	default:
		return AccessNone, fmt.Errorf("invalid access level: %s", s)
	}
}

// FolderAccess is one user grant on a folder.
type FolderAccess struct {
	ID       int         `json:"-"`
	FolderID string      `json:"-" gorm:"index"`
	UserID   string      `json:"id"`
	Level    AccessLevel `json:"level"`
}

func (FolderAccess) TableName() string {
	return "folder_access"
}

// AccessList is the access descriptor exposed on folder documents.
type AccessList struct {
	Users  []FolderAccess `json:"users"`
	Groups []FolderAccess `json:"groups"`
}
