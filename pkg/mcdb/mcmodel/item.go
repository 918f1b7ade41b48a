package mcmodel

import (
	"strings"
	"time"
)

// Item is a native item record; it always lives in a native folder.
type Item struct {
	ID          string    `json:"_id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	LowerName   string    `json:"lowerName" gorm:"index;size:191"`
	Description string    `json:"description"`
	FolderID    string    `json:"folderId" gorm:"index;size:191"`
	CreatorID   string    `json:"creatorId"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"updated"`
}

func (Item) TableName() string {
	return "items"
}

func (i *Item) SetName(name string) {
	i.Name = name
	i.LowerName = strings.ToLower(name)
}
