package stor

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/materials-commons/mcvr/pkg/mcdb"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/tutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := mcdb.Open(sqlite.Open(filepath.Join(t.TempDir(), "mcvr.db")))
	require.NoError(t, err)
	return db
}

func TestGormUserStor(t *testing.T) {
	s := NewGormUserStor(openTestDB(t))

	u, err := s.CreateUser(&mcmodel.User{Login: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, u.ApiToken)
	assert.Equal(t, "jane-doe", u.Slug)

	byToken, err := s.GetUserByAPIToken(u.ApiToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byToken.ID)

	_, err = s.GetUserByLogin("nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGormFolderStorMappingAndAccess(t *testing.T) {
	db := openTestDB(t)
	folders := NewGormFolderStor(db)
	items := NewGormItemStor(db)

	parent, err := folders.CreateFolder(&mcmodel.Folder{Name: "Data", ParentID: "c1", ParentCollection: "collection"})
	require.NoError(t, err)
	assert.Equal(t, "data", parent.LowerName)

	child, err := folders.GetChildFolderByName("c1", "collection", "DATA")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ID)

	require.NoError(t, folders.GrantAccess(parent.ID, "u1", mcmodel.AccessRead))
	require.NoError(t, folders.GrantAccess(parent.ID, "u1", mcmodel.AccessWrite))
	loaded, err := folders.GetFolderByID(parent.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Access, 1)
	assert.Equal(t, mcmodel.AccessWrite, loaded.Access[0].Level)

	mapped, err := folders.SetMapping(parent.ID, true, "/srv/data")
	require.NoError(t, err)
	assert.True(t, mapped.IsMappingRoot())

	other, err := folders.CreateFolder(&mcmodel.Folder{Name: "other", ParentID: "c1", ParentCollection: "collection"})
	require.NoError(t, err)
	_, err = items.CreateItem(&mcmodel.Item{Name: "thing", FolderID: other.ID})
	require.NoError(t, err)

	_, err = folders.SetMapping(other.ID, true, "/srv/other")
	assert.True(t, errors.Is(err, ErrHasChildren))
}

func TestGormUploadStorReceivedIsConditional(t *testing.T) {
	s := NewGormUploadStor(openTestDB(t))

	u, err := s.CreateUpload(&mcmodel.Upload{UserID: "u1", Name: "a.txt", Size: 10})
	require.NoError(t, err)

	require.NoError(t, s.UpdateUploadReceived(u.ID, 0, 4))
	assert.True(t, errors.Is(s.UpdateUploadReceived(u.ID, 0, 8), ErrReceivedConflict))

	loaded, err := s.GetUploadByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), loaded.Received)

	require.NoError(t, s.DeleteUpload(u.ID))
	_, err = s.GetUploadByID(u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGormNotificationStor(t *testing.T) {
	s := NewGormNotificationStor(openTestDB(t))
	start := time.Now().Add(-time.Minute)

	n, err := s.CreateNotification(&mcmodel.Notification{UserID: "u1", Type: "progress", Title: "Copying resources", Total: 2, State: mcmodel.NotificationStateActive})
	require.NoError(t, err)

	n.Current = 2
	n.State = mcmodel.NotificationStateSuccess
	require.NoError(t, s.UpdateNotification(n))

	list, err := s.ListNotificationsForUser("u1", start)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Current)
	assert.Equal(t, mcmodel.NotificationStateSuccess, list[0].State)
}

func TestMySQLMigrate(t *testing.T) {
	if !tutil.IsIntegrationTest() {
		t.Skip("Integration test requires MySQL")
	}

	db, err := mcdb.Open(mysql.Open(tutil.MySQLDSN()))
	require.NoError(t, err)

	s := NewGormCollectionStor(db)
	c, err := s.CreateCollection(&mcmodel.Collection{Name: "it-" + time.Now().Format("150405.000")})
	require.NoError(t, err)

	found, err := s.GetCollectionByName(c.Name)
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
}
