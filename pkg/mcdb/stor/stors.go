package stor

import (
	"errors"
	"time"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every stor when a lookup matches nothing. The
// gorm stors return gorm's own sentinel, so the two are the same value.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrHasChildren rejects turning a folder with native children into a mapping.
	ErrHasChildren = errors.New("folder has native children")

	// ErrReceivedConflict means another chunk moved the upload offset first.
	ErrReceivedConflict = errors.New("upload received offset changed concurrently")
)

type UserStor interface {
	CreateUser(user *mcmodel.User) (*mcmodel.User, error)
	GetUserByID(id string) (*mcmodel.User, error)
	GetUserByLogin(login string) (*mcmodel.User, error)
	GetUserByAPIToken(apitoken string) (*mcmodel.User, error)
}

type CollectionStor interface {
	CreateCollection(collection *mcmodel.Collection) (*mcmodel.Collection, error)
	GetCollectionByID(id string) (*mcmodel.Collection, error)
	GetCollectionByName(name string) (*mcmodel.Collection, error)
}

type FolderStor interface {
	CreateFolder(folder *mcmodel.Folder) (*mcmodel.Folder, error)
	GetFolderByID(id string) (*mcmodel.Folder, error)
	GetChildFolderByName(parentID, parentCollection, name string) (*mcmodel.Folder, error)
	CountChildren(folderID string) (folders int64, items int64, err error)
	SetMapping(folderID string, isMapping bool, fsPath string) (*mcmodel.Folder, error)
	GrantAccess(folderID, userID string, level mcmodel.AccessLevel) error
}

type ItemStor interface {
	CreateItem(item *mcmodel.Item) (*mcmodel.Item, error)
	GetItemByID(id string) (*mcmodel.Item, error)
	GetChildItemByName(folderID, name string) (*mcmodel.Item, error)
}

type UploadStor interface {
	CreateUpload(upload *mcmodel.Upload) (*mcmodel.Upload, error)
	GetUploadByID(id string) (*mcmodel.Upload, error)
	// UpdateUploadReceived moves received from 'from' to 'to'. It fails with
	// ErrReceivedConflict when the stored value is no longer 'from'.
	UpdateUploadReceived(id string, from, to int64) error
	DeleteUpload(id string) error
}

type NotificationStor interface {
	CreateNotification(n *mcmodel.Notification) (*mcmodel.Notification, error)
	UpdateNotification(n *mcmodel.Notification) error
	ListNotificationsForUser(userID string, since time.Time) ([]mcmodel.Notification, error)
}

type Stors struct {
	UserStor         UserStor
	CollectionStor   CollectionStor
	FolderStor       FolderStor
	ItemStor         ItemStor
	UploadStor       UploadStor
	NotificationStor NotificationStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		UserStor:         NewGormUserStor(db),
		CollectionStor:   NewGormCollectionStor(db),
		FolderStor:       NewGormFolderStor(db),
		ItemStor:         NewGormItemStor(db),
		UploadStor:       NewGormUploadStor(db),
		NotificationStor: NewGormNotificationStor(db),
	}
}

// NewInMemoryStors returns stors that keep everything in process memory.
func NewInMemoryStors() *Stors {
	folders := NewInMemoryFolderStor()
	return &Stors{
		UserStor:         NewInMemoryUserStor(nil),
		CollectionStor:   NewInMemoryCollectionStor(),
		FolderStor:       folders,
		ItemStor:         NewInMemoryItemStor(folders),
		UploadStor:       NewInMemoryUploadStor(),
		NotificationStor: NewInMemoryNotificationStor(),
	}
}
