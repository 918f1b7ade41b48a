package vr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folderNames(views []*FolderView) []string {
	var names []string
	for _, v := range views {
		names = append(names, v.Name)
	}
	return names
}

func TestListFoldersSortAndPage(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"b", "C", "a", "d"} {
		mkdir(t, f.path(name))
	}
	writeFile(t, f.path("file.txt"), "x")

	views, err := f.e.ListFolders(f.target(f.dir), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "C", "d"}, folderNames(views))

	views, err = f.e.ListFolders(f.target(f.dir), ListParams{Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "a", "b", "d"}, folderNames(views))

	views, err = f.e.ListFolders(f.target(f.dir), ListParams{Offset: 1, Limit: 2, SortDir: SortDescending})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "b"}, folderNames(views))

	views, err = f.e.ListFolders(f.target(f.dir), ListParams{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, folderNames(views))

	views, err = f.e.ListFolders(f.target(f.dir), ListParams{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListFoldersInvalidSortKey(t *testing.T) {
	f := newFixture(t)

	_, err := f.e.ListFolders(f.target(f.dir), ListParams{Sort: "nope"})
	require.True(t, IsKind(err, KindInvalidParameter))
}

func TestListItemsAndFiles(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("small.txt"), "1")
	writeFile(t, f.path("big.txt"), "12345")
	mkdir(t, f.path("dir"))

	items, err := f.e.ListItems(f.target(f.dir), ListParams{Sort: "size", SortDir: SortDescending})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "big.txt", items[0].Name)
	assert.Equal(t, f.root.ID, items[0].FolderID)

	files, err := f.e.ItemFiles(f.target(f.path("big.txt")), ListParams{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, items[0].ID, files[0].ID)

	_, err = f.e.ListItems(f.target(f.path("big.txt")), ListParams{})
	require.True(t, IsKind(err, KindInvalidResource))
}

func TestDetails(t *testing.T) {
	f := newFixture(t)
	mkdir(t, f.path("a"))
	mkdir(t, f.path("b"))
	writeFile(t, f.path("c.txt"), "x")
	writeFile(t, f.path("a", "nested.txt"), "x")

	details, err := f.e.Details(f.target(f.dir))
	require.NoError(t, err)
	assert.Equal(t, &FolderDetails{NFolders: 2, NItems: 1}, details)
}
