package mcmodel

import "time"

type User struct {
	ID        string    `json:"_id" gorm:"primaryKey"`
	Login     string    `json:"login" gorm:"uniqueIndex;size:191"`
	Slug      string    `json:"slug"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Admin     bool      `json:"admin"`
	Public    bool      `json:"public"`
	ApiToken  string    `json:"-" gorm:"index;size:191"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is nil safe; anonymous requests carry a nil user.
func (u *User) IsAdmin() bool {
	return u != nil && u.Admin
}

func (u *User) GetID() string {
	if u == nil {
		return ""
	}

	return u.ID
}

// LevelFor is the access a requesting user has on this user document.
// Any authenticated user may read another user, anonymous callers only
// public ones.
func (u *User) LevelFor(requester *User) AccessLevel {
	switch {
	case requester.IsAdmin():
		return AccessOwn
	case requester != nil && requester.ID == u.ID:
		return AccessOwn
	case requester != nil || u.Public:
		return AccessRead
	default:
		return AccessNone
	}
}
