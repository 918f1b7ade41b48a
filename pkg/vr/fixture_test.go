package vr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/stretchr/testify/require"
)

// fixture is a collection "data" holding native folder "top", which holds
// the mapping root "mapped" backed by a temp directory.
type fixture struct {
	e          *Engine
	stors      *stor.Stors
	owner      *mcmodel.User
	other      *mcmodel.User
	admin      *mcmodel.User
	collection *mcmodel.Collection
	top        *mcmodel.Folder
	root       *mcmodel.Folder
	dir        string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stors := stor.NewInMemoryStors()
	f := &fixture{stors: stors, dir: t.TempDir()}

	f.owner = mustCreateUser(t, stors, "owner", false)
	f.other = mustCreateUser(t, stors, "other", false)
	f.admin = mustCreateUser(t, stors, "admin", true)

	var err error
	f.collection, err = stors.CollectionStor.CreateCollection(&mcmodel.Collection{Name: "data", CreatorID: f.owner.ID})
	require.NoError(t, err)

	f.top, err = stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "top",
		ParentID:         f.collection.ID,
		ParentCollection: mcmodel.ParentCollectionCollection,
		CreatorID:        f.owner.ID,
	})
	require.NoError(t, err)

	f.root = f.mapping(t, "mapped", f.dir)

	opts := DefaultOptions()
	opts.UploadDir = t.TempDir()
	opts.MinChunkSize = 0
	f.e = NewEngine(stors, opts)

	return f
}

// mapping creates a mapping root below top backed by dir.
func (f *fixture) mapping(t *testing.T, name, dir string) *mcmodel.Folder {
	t.Helper()

	folder, err := f.stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             name,
		ParentID:         f.top.ID,
		ParentCollection: mcmodel.ParentCollectionFolder,
		CreatorID:        f.owner.ID,
	})
	require.NoError(t, err)

	folder, err = f.stors.FolderStor.SetMapping(folder.ID, true, dir)
	require.NoError(t, err)

	return folder
}

func (f *fixture) target(p string) *Target {
	return &Target{Path: p, Root: f.root, User: f.owner}
}

func (f *fixture) path(elems ...string) string {
	return filepath.Join(append([]string{f.dir}, elems...)...)
}

func mustCreateUser(t *testing.T, stors *stor.Stors, login string, admin bool) *mcmodel.User {
	t.Helper()
	u, err := stors.UserStor.CreateUser(&mcmodel.User{Login: login, Email: login + "@example.com", Admin: admin})
	require.NoError(t, err)
	return u
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func mkdir(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(p, 0755))
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}
