package stor

import (
	"sort"
	"sync"
	"time"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryNotificationStor struct {
	mu            sync.Mutex
	notifications map[string]mcmodel.Notification
}

func NewInMemoryNotificationStor() *InMemoryNotificationStor {
	return &InMemoryNotificationStor{notifications: make(map[string]mcmodel.Notification)}
}

func (s *InMemoryNotificationStor) CreateNotification(n *mcmodel.Notification) (*mcmodel.Notification, error) {
	var err error
	if n.ID == "" {
		if n.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return n, nil
}

func (s *InMemoryNotificationStor) UpdateNotification(n *mcmodel.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notifications[n.ID]
	if !ok {
		return ErrNotFound
	}

	existing.Message = n.Message
	existing.Current = n.Current
	existing.Total = n.Total
	existing.State = n.State
	existing.UpdatedAt = time.Now()
	s.notifications[n.ID] = existing
	return nil
}

func (s *InMemoryNotificationStor) ListNotificationsForUser(userID string, since time.Time) ([]mcmodel.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []mcmodel.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && !n.UpdatedAt.Before(since) {
			notifications = append(notifications, n)
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].UpdatedAt.Before(notifications[j].UpdatedAt)
	})

	return notifications, nil
}
