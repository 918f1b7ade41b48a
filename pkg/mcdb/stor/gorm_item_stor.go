package stor

import (
	"strings"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormItemStor struct {
	db *gorm.DB
}

func NewGormItemStor(db *gorm.DB) *GormItemStor {
	return &GormItemStor{db: db}
}

func (s *GormItemStor) CreateItem(item *mcmodel.Item) (*mcmodel.Item, error) {
	var err error
	if item.ID == "" {
		if item.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	item.SetName(item.Name)

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(item).Error
	})

	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *GormItemStor) GetItemByID(id string) (*mcmodel.Item, error) {
	var item mcmodel.Item
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *GormItemStor) GetChildItemByName(folderID, name string) (*mcmodel.Item, error) {
	var item mcmodel.Item
	err := s.db.Where("folder_id = ?", folderID).
		Where("lower_name = ?", strings.ToLower(name)).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}
