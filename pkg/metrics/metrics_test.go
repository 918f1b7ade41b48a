package metrics

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOpAndBytes(t *testing.T) {
	m := New()

	m.ObserveOp("copy_item", nil)
	m.ObserveOp("copy_item", errors.New("boom"))
	m.AddBytes("upload", 10)
	m.AddBytes("upload", 0)

	require.Equal(t, float64(1), testutil.ToFloat64(m.opsTotal.WithLabelValues("copy_item", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.opsTotal.WithLabelValues("copy_item", "Internal")))
	require.Equal(t, float64(10), testutil.ToFloat64(m.bytesTotal.WithLabelValues("upload")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/folder/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/folder/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/folder/:id", "200")))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.True(t, strings.Contains(rec.Body.String(), "mcvr_http_requests_total"))
}

func TestEngineRecordsSuccesses(t *testing.T) {
	m := New()
	dir := t.TempDir()
	stors := stor.NewInMemoryStors()

	user, err := stors.UserStor.CreateUser(&mcmodel.User{Login: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	collection, err := stors.CollectionStor.CreateCollection(&mcmodel.Collection{Name: "data", CreatorID: user.ID})
	require.NoError(t, err)
	root, err := stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "mapped",
		ParentID:         collection.ID,
		ParentCollection: mcmodel.ParentCollectionCollection,
		CreatorID:        user.ID,
	})
	require.NoError(t, err)
	root, err = stors.FolderStor.SetMapping(root.ID, true, dir)
	require.NoError(t, err)

	opts := vr.DefaultOptions()
	opts.UploadDir = t.TempDir()
	engine := vr.NewEngine(stors, opts, vr.WithMetrics(m))
	target := func(p string) *vr.Target {
		return &vr.Target{Path: p, Root: root, User: user}
	}

	_, err = engine.CreateFolder(target(dir), "sub")
	require.NoError(t, err)
	_, err = engine.CreateItem(target(dir), "a.txt")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644))
	_, err = engine.CopyItem(target(filepath.Join(dir, "a.txt")), "", "")
	require.NoError(t, err)
	_, err = engine.UpdateItem(target(filepath.Join(dir, "a.txt")), "b.txt", "")
	require.NoError(t, err)

	for _, op := range []string{"create_folder", "create_item", "copy_item", "move_item"} {
		require.Equal(t, float64(1), testutil.ToFloat64(m.opsTotal.WithLabelValues(op, "ok")), op)
	}

	d, err := engine.PrepareDownload(target(filepath.Join(dir, "b.txt")), vr.DownloadRequest{})
	require.NoError(t, err)
	_, err = d.Stream(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, float64(5), testutil.ToFloat64(m.bytesTotal.WithLabelValues("download")))
}
