package stor

import (
	"time"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"gorm.io/gorm"
)

type GormNotificationStor struct {
	db *gorm.DB
}

func NewGormNotificationStor(db *gorm.DB) *GormNotificationStor {
	return &GormNotificationStor{db: db}
}

func (s *GormNotificationStor) CreateNotification(n *mcmodel.Notification) (*mcmodel.Notification, error) {
	var err error
	if n.ID == "" {
		if n.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}

	return n, nil
}

func (s *GormNotificationStor) UpdateNotification(n *mcmodel.Notification) error {
	return s.db.Model(&mcmodel.Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]interface{}{
			"message": n.Message,
			"current": n.Current,
			"total":   n.Total,
			"state":   n.State,
		}).Error
}

func (s *GormNotificationStor) ListNotificationsForUser(userID string, since time.Time) ([]mcmodel.Notification, error) {
	var notifications []mcmodel.Notification
	err := s.db.Where("user_id = ?", userID).
		Where("updated_at >= ?", since).
		Order("updated_at").
		Find(&notifications).Error
	return notifications, err
}
