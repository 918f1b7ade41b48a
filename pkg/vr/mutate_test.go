package vr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/materials-commons/mcvr/pkg/vrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderAndItem(t *testing.T) {
	f := newFixture(t)

	folder, err := f.e.CreateFolder(f.target(f.dir), "new")
	require.NoError(t, err)
	assert.Equal(t, "new", folder.Name)
	assert.Equal(t, f.root.ID, folder.ParentID)
	assert.DirExists(t, f.path("new"))

	item, err := f.e.CreateItem(f.target(f.path("new")), "empty.txt")
	require.NoError(t, err)
	assert.Equal(t, folder.ID, item.FolderID)
	assert.Equal(t, int64(0), item.Size)

	_, err = f.e.CreateFolder(f.target(f.dir), "new")
	require.True(t, IsKind(err, KindAlreadyExists))

	_, err = f.e.CreateItem(f.target(f.path("new")), "empty.txt")
	require.True(t, IsKind(err, KindAlreadyExists))

	_, err = f.e.CreateFolder(f.target(f.dir), "../escape")
	require.True(t, IsKind(err, KindInvalidParameter))
}

func TestUpdateFolderRename(t *testing.T) {
	f := newFixture(t)
	mkdir(t, f.path("old"))
	mkdir(t, f.path("taken"))

	same, err := f.e.UpdateFolder(f.target(f.path("old")), "old", "")
	require.NoError(t, err)
	assert.Equal(t, "old", same.Name)

	_, err = f.e.UpdateFolder(f.target(f.path("old")), "taken", "")
	require.True(t, IsKind(err, KindAlreadyExists))

	renamed, err := f.e.UpdateFolder(f.target(f.path("old")), "fresh", "")
	require.NoError(t, err)
	assert.Equal(t, vrid.Encode(f.path("fresh"), f.root.ID), renamed.ID)
	assert.NoDirExists(t, f.path("old"))
}

func TestUpdateFolderIntoItself(t *testing.T) {
	f := newFixture(t)
	mkdir(t, f.path("a", "b"))

	_, err := f.e.UpdateFolder(f.target(f.path("a")), "", vrid.Encode(f.path("a", "b"), f.root.ID))
	require.True(t, IsKind(err, KindInvalidParameter))
}

func TestMoveFolderAcrossRoots(t *testing.T) {
	f := newFixture(t)
	otherDir := t.TempDir()
	other := f.mapping(t, "second", otherDir)

	writeFile(t, f.path("tree", "x", "leaf.txt"), "leaf")

	moved, err := f.e.UpdateFolder(f.target(f.path("tree")), "", other.ID)
	require.NoError(t, err)
	assert.NoDirExists(t, f.path("tree"))
	assert.Equal(t, other.ID, moved.ParentID)

	items, err := f.e.ListItems(&Target{Path: filepath.Join(otherDir, "tree", "x"), Root: other, User: f.owner}, ListParams{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	p, rootID, err := vrid.Decode(items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(otherDir, "tree", "x", "leaf.txt"), p)
	assert.Equal(t, other.ID, rootID)
}

func TestMoveToNativeFolderIsNotAMapping(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "x")

	_, err := f.e.UpdateItem(f.target(f.path("a.txt")), "", f.top.ID)
	require.True(t, IsKind(err, KindNotAMapping))
}

func TestUpdateItemAndFile(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "x")
	mkdir(t, f.path("dest"))

	item, err := f.e.UpdateItem(f.target(f.path("a.txt")), "b.txt", vrid.Encode(f.path("dest"), f.root.ID))
	require.NoError(t, err)
	assert.Equal(t, "b.txt", item.Name)
	assert.FileExists(t, f.path("dest", "b.txt"))

	file, err := f.e.UpdateFile(f.target(f.path("dest", "b.txt")), "c.txt")
	require.NoError(t, err)
	assert.Equal(t, "c.txt", file.Name)
	assert.Equal(t, "x", readFile(t, f.path("dest", "c.txt")))
}

func TestDeleteContentsThenFolder(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("d", "a.txt"), "x")
	writeFile(t, f.path("d", "sub", "b.txt"), "y")

	require.NoError(t, f.e.DeleteContents(f.target(f.path("d"))))
	entries, err := os.ReadDir(f.path("d"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, f.e.DeleteFolder(f.target(f.path("d"))))
	assert.NoDirExists(t, f.path("d"))
}

func TestMappingRootOperationsAreNative(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.e.DeleteFolder(f.target(f.dir)), ErrNative)

	_, err := f.e.UpdateFolder(f.target(f.dir), "renamed", "")
	require.ErrorIs(t, err, ErrNative)
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "x")

	require.True(t, IsKind(f.e.DeleteItem(f.target(f.dir)), KindInvalidResource))
	require.NoError(t, f.e.DeleteItem(f.target(f.path("a.txt"))))
	assert.NoFileExists(t, f.path("a.txt"))
}

func TestSetMapping(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(t.TempDir(), "created", "here")

	_, err := f.e.SetMapping(f.owner, f.top.ID, true, dir)
	require.True(t, IsKind(err, KindAccessDenied))

	_, err = f.e.SetMapping(f.admin, f.top.ID, true, "relative")
	require.True(t, IsKind(err, KindInvalidParameter))

	// top holds the mapping folders created by the fixture.
	_, err = f.e.SetMapping(f.admin, f.top.ID, true, dir)
	require.True(t, IsKind(err, KindInvalidParameter))
	assert.DirExists(t, dir)

	unmapped, err := f.e.SetMapping(f.admin, f.root.ID, false, "")
	require.NoError(t, err)
	assert.False(t, unmapped.IsMappingRoot())
}
