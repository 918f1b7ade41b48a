package stor

import (
	"strings"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormFolderStor struct {
	db *gorm.DB
}

func NewGormFolderStor(db *gorm.DB) *GormFolderStor {
	return &GormFolderStor{db: db}
}

func (s *GormFolderStor) CreateFolder(folder *mcmodel.Folder) (*mcmodel.Folder, error) {
	var err error
	if folder.ID == "" {
		if folder.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	folder.SetName(folder.Name)

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(folder).Error
	})

	if err != nil {
		return nil, err
	}

	return folder, nil
}

// GetFolderByID loads the folder along with its access grants.
func (s *GormFolderStor) GetFolderByID(id string) (*mcmodel.Folder, error) {
	var folder mcmodel.Folder
	if err := s.db.Preload("Access").Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, err
	}

	return &folder, nil
}

func (s *GormFolderStor) GetChildFolderByName(parentID, parentCollection, name string) (*mcmodel.Folder, error) {
	var folder mcmodel.Folder
	err := s.db.Preload("Access").
		Where("parent_id = ?", parentID).
		Where("parent_collection = ?", parentCollection).
		Where("lower_name = ?", strings.ToLower(name)).
		First(&folder).Error
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

func (s *GormFolderStor) CountChildren(folderID string) (int64, int64, error) {
	var folders, items int64

	err := s.db.Model(&mcmodel.Folder{}).
		Where("parent_id = ?", folderID).
		Where("parent_collection = ?", mcmodel.ParentCollectionFolder).
		Count(&folders).Error
	if err != nil {
		return 0, 0, err
	}

	if err := s.db.Model(&mcmodel.Item{}).Where("folder_id = ?", folderID).Count(&items).Error; err != nil {
		return 0, 0, err
	}

	return folders, items, nil
}

// SetMapping turns a folder into a mapping root, or back. A folder holding
// native children cannot become a mapping.
func (s *GormFolderStor) SetMapping(folderID string, isMapping bool, fsPath string) (*mcmodel.Folder, error) {
	if isMapping {
		folders, items, err := s.CountChildren(folderID)
		if err != nil {
			return nil, err
		}

		if folders+items != 0 {
			return nil, ErrHasChildren
		}
	}

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Model(&mcmodel.Folder{}).
			Where("id = ?", folderID).
			Updates(map[string]interface{}{"is_mapping": isMapping, "fs_path": fsPath}).Error
	})

	if err != nil {
		return nil, err
	}

	return s.GetFolderByID(folderID)
}

// GrantAccess sets the level a user has on a folder, replacing any
// existing grant.
func (s *GormFolderStor) GrantAccess(folderID, userID string, level mcmodel.AccessLevel) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		err := tx.Where("folder_id = ?", folderID).
			Where("user_id = ?", userID).
			Delete(&mcmodel.FolderAccess{}).Error
		if err != nil {
			return err
		}

		return tx.Create(&mcmodel.FolderAccess{FolderID: folderID, UserID: userID, Level: level}).Error
	})
}
