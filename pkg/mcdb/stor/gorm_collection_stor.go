package stor

import (
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormCollectionStor struct {
	db *gorm.DB
}

func NewGormCollectionStor(db *gorm.DB) *GormCollectionStor {
	return &GormCollectionStor{db: db}
}

func (s *GormCollectionStor) CreateCollection(collection *mcmodel.Collection) (*mcmodel.Collection, error) {
	var err error
	if collection.ID == "" {
		if collection.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(collection).Error
	})

	if err != nil {
		return nil, err
	}

	return collection, nil
}

func (s *GormCollectionStor) GetCollectionByID(id string) (*mcmodel.Collection, error) {
	var collection mcmodel.Collection
	if err := s.db.Where("id = ?", id).First(&collection).Error; err != nil {
		return nil, err
	}

	return &collection, nil
}

func (s *GormCollectionStor) GetCollectionByName(name string) (*mcmodel.Collection, error) {
	var collection mcmodel.Collection
	if err := s.db.Where("name = ?", name).First(&collection).Error; err != nil {
		return nil, err
	}

	return &collection, nil
}
