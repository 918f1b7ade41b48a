package vr

import (
	"sync"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
)

// Progress tracks one long running operation.
type Progress interface {
	Update(message string, increment int)
	Done(err error)
}

// ProgressFactory starts progress tracking. When enabled is false the
// returned Progress records nothing.
type ProgressFactory interface {
	Begin(user *mcmodel.User, title string, total int, enabled bool) Progress
}

type NoopProgress struct{}

func (NoopProgress) Begin(*mcmodel.User, string, int, bool) Progress { return NoopProgress{} }
func (NoopProgress) Update(string, int)                              {}
func (NoopProgress) Done(error)                                      {}

// NotificationProgress persists progress as user notifications.
type NotificationProgress struct {
	notifications stor.NotificationStor
}

func NewNotificationProgress(notifications stor.NotificationStor) *NotificationProgress {
	return &NotificationProgress{notifications: notifications}
}

func (p *NotificationProgress) Begin(user *mcmodel.User, title string, total int, enabled bool) Progress {
	if !enabled || user == nil {
		return NoopProgress{}
	}

	n, err := p.notifications.CreateNotification(&mcmodel.Notification{
		UserID:  user.ID,
		Type:    "progress",
		Title:   title,
		Message: "Calculating requirements...",
		Total:   total,
		State:   mcmodel.NotificationStateActive,
	})
	if err != nil {
		log.Warnf("Unable to record progress for '%s': %s", title, err)
		return NoopProgress{}
	}

	return &notificationTracker{notifications: p.notifications, n: n}
}

type notificationTracker struct {
	mu            sync.Mutex
	notifications stor.NotificationStor
	n             *mcmodel.Notification
}

func (t *notificationTracker) Update(message string, increment int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if message != "" {
		t.n.Message = message
	}
	t.n.Current += increment
	t.save()
}

func (t *notificationTracker) Done(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.n.State = mcmodel.NotificationStateSuccess
	if err != nil {
		t.n.State = mcmodel.NotificationStateError
		t.n.Message = err.Error()
	}
	t.save()
}

func (t *notificationTracker) save() {
	if err := t.notifications.UpdateNotification(t.n); err != nil {
		log.Warnf("Unable to update progress %s: %s", t.n.ID, err)
	}
}
