package stor

import (
	"github.com/gosimple/slug"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormUserStor struct {
	db *gorm.DB
}

func NewGormUserStor(db *gorm.DB) *GormUserStor {
	return &GormUserStor{db: db}
}

// CreateUser creates a new user. The id, slug and API token are generated
// when not already set.
func (s *GormUserStor) CreateUser(user *mcmodel.User) (*mcmodel.User, error) {
	if err := prepareUser(user); err != nil {
		return nil, err
	}

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *GormUserStor) GetUserByID(id string) (*mcmodel.User, error) {
	var user mcmodel.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByLogin(login string) (*mcmodel.User, error) {
	var user mcmodel.User
	if err := s.db.Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByAPIToken(apitoken string) (*mcmodel.User, error) {
	var user mcmodel.User
	if err := s.db.Where("api_token = ?", apitoken).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func prepareUser(user *mcmodel.User) error {
	var err error

	if user.ID == "" {
		if user.ID, err = newID(); err != nil {
			return err
		}
	}

	if user.ApiToken == "" {
		if user.ApiToken, err = newID(); err != nil {
			return err
		}
	}

	if user.Slug == "" {
		user.Slug = slug.Make(user.Login)
	}

	return nil
}
