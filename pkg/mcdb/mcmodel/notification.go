package mcmodel

import "time"

const (
	NotificationStateActive  = "active"
	NotificationStateSuccess = "success"
	NotificationStateError   = "error"
)

// Notification records the progress of a long running operation for a
// user.
type Notification struct {
	ID        string    `json:"_id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index;size:191"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Total     int       `json:"total"`
	Current   int       `json:"current"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (Notification) TableName() string {
	return "notifications"
}
