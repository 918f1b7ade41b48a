package mcmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderLevelFor(t *testing.T) {
	owner := &User{ID: "owner"}
	reader := &User{ID: "reader"}
	writer := &User{ID: "writer"}
	manager := &User{ID: "manager"}
	stranger := &User{ID: "stranger"}
	admin := &User{ID: "admin", Admin: true}

	f := &Folder{
		ID:        "f1",
		CreatorID: owner.ID,
		Access: []FolderAccess{
			{UserID: reader.ID, Level: AccessRead},
			{UserID: writer.ID, Level: AccessWrite},
			{UserID: manager.ID, Level: AccessAdmin},
		},
	}

	tests := []struct {
		name  string
		user  *User
		level AccessLevel
	}{
		{"owner owns", owner, AccessOwn},
		{"admin owns", admin, AccessOwn},
		{"reader reads", reader, AccessRead},
		{"writer writes", writer, AccessWrite},
		{"admin grant owns", manager, AccessOwn},
		{"stranger has none", stranger, AccessNone},
		{"anonymous has none", nil, AccessNone},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.level, f.LevelFor(test.user))
		})
	}

	f.Public = true
	assert.Equal(t, AccessRead, f.LevelFor(nil))
	assert.Equal(t, AccessRead, f.LevelFor(stranger))
	assert.False(t, f.HasAccess(stranger, AccessWrite))
}

func TestParseAccessLevel(t *testing.T) {
	l, err := ParseAccessLevel("WRITE")
	assert.NoError(t, err)
	assert.Equal(t, AccessWrite, l)

	_, err = ParseAccessLevel("sudo")
	assert.Error(t, err)
}
