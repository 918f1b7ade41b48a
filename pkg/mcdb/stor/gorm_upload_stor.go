package stor

import (
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormUploadStor struct {
	db *gorm.DB
}

func NewGormUploadStor(db *gorm.DB) *GormUploadStor {
	return &GormUploadStor{db: db}
}

func (s *GormUploadStor) CreateUpload(upload *mcmodel.Upload) (*mcmodel.Upload, error) {
	var err error
	if upload.ID == "" {
		if upload.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(upload).Error
	})

	if err != nil {
		return nil, err
	}

	return upload, nil
}

func (s *GormUploadStor) GetUploadByID(id string) (*mcmodel.Upload, error) {
	var upload mcmodel.Upload
	if err := s.db.Where("id = ?", id).First(&upload).Error; err != nil {
		return nil, err
	}

	return &upload, nil
}

func (s *GormUploadStor) UpdateUploadReceived(id string, from, to int64) error {
	result := s.db.Model(&mcmodel.Upload{}).
		Where("id = ?", id).
		Where("received = ?", from).
		Update("received", to)

	switch {
	case result.Error != nil:
		return result.Error
	case result.RowsAffected == 0:
		return ErrReceivedConflict
	default:
		return nil
	}
}

func (s *GormUploadStor) DeleteUpload(id string) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&mcmodel.Upload{}).Error
	})
}
