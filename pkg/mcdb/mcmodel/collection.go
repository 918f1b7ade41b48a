package mcmodel

import "time"

type Collection struct {
	ID          string    `json:"_id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:191"`
	Description string    `json:"description"`
	Public      bool      `json:"public"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"updated"`
}

func (Collection) TableName() string {
	return "collections"
}

func (c *Collection) LevelFor(user *User) AccessLevel {
	switch {
	case user.IsAdmin():
		return AccessOwn
	case user != nil && user.ID == c.CreatorID:
		return AccessOwn
	case c.Public:
		return AccessRead
	default:
		return AccessNone
	}
}
