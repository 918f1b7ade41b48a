package mcmodel

import (
	"os"
	"time"
)

// Upload is a chunked upload session. Received only moves forward, one
// accepted chunk at a time.
type Upload struct {
	ID         string      `json:"_id" gorm:"primaryKey"`
	UserID     string      `json:"userId" gorm:"index;size:191"`
	ParentID   string      `json:"parentId"`
	ParentType string      `json:"parentType"`
	FileID     string      `json:"fileId,omitempty"`
	Name       string      `json:"name"`
	Size       int64       `json:"size"`
	Received   int64       `json:"received"`
	ChunkID    string      `json:"-"`
	Perms      os.FileMode `json:"-"`
	CreatedAt  time.Time   `json:"created"`
	UpdatedAt  time.Time   `json:"updated"`
}

func (Upload) TableName() string {
	return "uploads"
}

func (u *Upload) Remaining() int64 {
	return u.Size - u.Received
}

func (u *Upload) IsComplete() bool {
	return u.Received >= u.Size
}
