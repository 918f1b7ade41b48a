package webapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/materials-commons/mcvr/pkg/vrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderCreateAndList(t *testing.T) {
	f := newAPIFixture(t)
	controller := NewFolderController(f.engine, f.native)

	t.Run("Create", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, http.MethodPost, "/api/v1/folder", nil, map[string]string{
			"parentType": "folder",
			"parentId":   f.root.ID,
			"name":       "sub",
		}, f.owner)

		err := f.serve(ctx, mcmodel.AccessWrite, apimiddleware.ParamsFromRequest, controller.CreateFolder)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var folder vr.FolderView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folder))
		assert.Equal(t, "sub", folder.Name)
		assert.Equal(t, f.root.ID, folder.ParentID)
		assert.Equal(t, vrid.Encode(f.path("sub"), f.root.ID), folder.ID)
		assert.DirExists(t, f.path("sub"))
	})

	t.Run("CreateNeedsName", func(t *testing.T) {
		ctx, _ := setupEchoContext(t, http.MethodPost, "/api/v1/folder", nil, map[string]string{
			"parentId": f.root.ID,
		}, f.owner)

		err := f.serve(ctx, mcmodel.AccessWrite, apimiddleware.ParamsFromRequest, controller.CreateFolder)
		var vrErr *vr.Error
		require.ErrorAs(t, err, &vrErr)
		assert.Equal(t, vr.KindInvalidParameter, vrErr.Kind)
		assert.Equal(t, "name", vrErr.Field)
	})

	t.Run("List", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, http.MethodGet, "/api/v1/folder", nil, map[string]string{
			"parentType": "folder",
			"parentId":   f.root.ID,
		}, f.owner)

		err := f.serve(ctx, mcmodel.AccessRead, apimiddleware.ParamsFromRequest, controller.ListFolders)
		require.NoError(t, err)

		var folders []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folders))
		require.Len(t, folders, 1)
		assert.Equal(t, "sub", folders[0]["name"])
		assert.Equal(t, float64(mcmodel.AccessOwn), folders[0]["_accessLevel"])
		assert.NotContains(t, folders[0], "fsPath")
	})

	t.Run("BadSortDir", func(t *testing.T) {
		ctx, _ := setupEchoContext(t, http.MethodGet, "/api/v1/folder", nil, map[string]string{
			"parentId": f.root.ID,
			"sortdir":  "2",
		}, f.owner)

		err := f.serve(ctx, mcmodel.AccessRead, apimiddleware.ParamsFromRequest, controller.ListFolders)
		assert.True(t, vr.IsKind(err, vr.KindInvalidParameter))
	})

	t.Run("NativeParentFallsThrough", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, http.MethodGet, "/api/v1/folder", nil, map[string]string{
			"parentType": "folder",
			"parentId":   f.top.ID,
		}, f.owner)

		hits := f.nativeHits
		require.NoError(t, f.serve(ctx, mcmodel.AccessRead, apimiddleware.ParamsFromRequest, controller.ListFolders))
		assert.Equal(t, hits+1, f.nativeHits)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestFolderRootOperationsGoNative(t *testing.T) {
	f := newAPIFixture(t)
	controller := NewFolderController(f.engine, f.native)

	ctx, rec := setupEchoContext(t, http.MethodDelete, "/api/v1/folder/"+f.root.ID, nil, nil, f.owner)
	err := f.serve(withID(ctx, f.root.ID), mcmodel.AccessWrite, apimiddleware.ParamsFromRequest, controller.DeleteFolder)
	require.NoError(t, err)
	assert.Equal(t, 1, f.nativeHits)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.DirExists(t, f.dir)
}

func TestFolderDeleteAndContents(t *testing.T) {
	f := newAPIFixture(t)
	controller := NewFolderController(f.engine, f.native)
	writeFile(t, f.path("d", "x.txt"), "x")
	writeFile(t, f.path("d", "e", "y.txt"), "y")
	id := vrid.Encode(f.path("d"), f.root.ID)

	ctx, rec := setupEchoContext(t, http.MethodDelete, "/api/v1/folder/"+id+"/contents", nil, nil, f.owner)
	require.NoError(t, f.serve(withID(ctx, id), mcmodel.AccessWrite, apimiddleware.ParamsFromRequest, controller.DeleteContents))
	assert.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(f.path("d"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	ctx, rec = setupEchoContext(t, http.MethodDelete, "/api/v1/folder/"+id, nil, nil, f.owner)
	require.NoError(t, f.serve(withID(ctx, id), mcmodel.AccessWrite, apimiddleware.ParamsFromRequest, controller.DeleteFolder))
	assert.Contains(t, rec.Body.String(), "Deleted folder d.")
	assert.NoDirExists(t, f.path("d"))
}

func TestFolderDownloadZip(t *testing.T) {
	f := newAPIFixture(t)
	controller := NewFolderController(f.engine, f.native)
	writeFile(t, f.path("d", "a.txt"), "aaa")
	writeFile(t, f.path("d", "sub", "b.txt"), "bb")
	id := vrid.Encode(f.path("d"), f.root.ID)

	ctx, rec := setupEchoContext(t, http.MethodGet, "/api/v1/folder/"+id+"/download", nil, nil, f.owner)
	require.NoError(t, f.serve(withID(ctx, id), mcmodel.AccessRead, apimiddleware.ParamsFromRequest, controller.DownloadFolder))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="d.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestFolderMappingUpdate(t *testing.T) {
	f := newAPIFixture(t)
	controller := NewFolderController(f.engine, f.native)
	folder, err := f.stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "fresh",
		ParentID:         f.top.ID,
		ParentCollection: mcmodel.ParentCollectionFolder,
		CreatorID:        f.owner.ID,
	})
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "fresh-mapping")

	handler := controller.MappingUpdate(f.native)

	t.Run("NonAdminDenied", func(t *testing.T) {
		ctx, _ := setupEchoContext(t, http.MethodPut, "/api/v1/folder/"+folder.ID, nil, map[string]string{
			"isMapping": "true",
			"fsPath":    dir,
		}, f.owner)

		err := handler(withID(ctx, folder.ID))
		assert.True(t, vr.IsKind(err, vr.KindAccessDenied))
	})

	t.Run("AdminSetsMapping", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, http.MethodPut, "/api/v1/folder/"+folder.ID, nil, map[string]string{
			"isMapping": "true",
			"fsPath":    dir,
		}, f.admin)

		require.NoError(t, handler(withID(ctx, folder.ID)))

		var view vr.FolderView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.True(t, view.IsMapping)
		assert.NotEmpty(t, view.FsPath)
		assert.DirExists(t, dir)
	})

	t.Run("FsPathRequired", func(t *testing.T) {
		ctx, _ := setupEchoContext(t, http.MethodPut, "/api/v1/folder/"+folder.ID, nil, map[string]string{
			"isMapping": "true",
		}, f.admin)

		err := handler(withID(ctx, folder.ID))
		var vrErr *vr.Error
		require.ErrorAs(t, err, &vrErr)
		assert.Equal(t, "fsPath", vrErr.Field)
	})

	t.Run("PlainUpdatePassesThrough", func(t *testing.T) {
		ctx, rec := setupEchoContext(t, http.MethodPut, "/api/v1/folder/"+folder.ID, nil, map[string]string{
			"name": "renamed",
		}, f.admin)

		require.NoError(t, handler(withID(ctx, folder.ID)))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
