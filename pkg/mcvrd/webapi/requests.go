package webapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/vr"
)

type listRequest struct {
	Name    string `query:"name"`
	Offset  int    `query:"offset" validate:"gte=0"`
	Limit   int    `query:"limit" validate:"gte=0"`
	Sort    string `query:"sort"`
	SortDir int    `query:"sortdir" validate:"omitempty,oneof=1 -1"`
}

func (r listRequest) params() vr.ListParams {
	return vr.ListParams{Name: r.Name, Offset: r.Offset, Limit: r.Limit, Sort: r.Sort, SortDir: r.SortDir}
}

type createRequest struct {
	Name string `query:"name" validate:"required"`
}

type updateFolderRequest struct {
	Name     string `query:"name"`
	ParentID string `query:"parentId"`
}

type updateItemRequest struct {
	Name     string `query:"name"`
	FolderID string `query:"folderId"`
}

type mappingRequest struct {
	IsMapping bool   `query:"isMapping"`
	FsPath    string `query:"fsPath" validate:"required_if=IsMapping true"`
}

type createFileRequest struct {
	Name string `query:"name" validate:"required"`
	Size int64  `query:"size" validate:"gte=0"`
}

type chunkRequest struct {
	Offset int64 `query:"offset" validate:"gte=0"`
}

type downloadRequest struct {
	Offset             int64  `query:"offset" validate:"gte=0"`
	EndByte            string `query:"endByte" validate:"omitempty,number"`
	ContentDisposition string `query:"contentDisposition" validate:"omitempty,oneof=inline attachment"`
}

func (r downloadRequest) download(rangeHeader string) vr.DownloadRequest {
	req := vr.DownloadRequest{
		Offset:             r.Offset,
		RangeHeader:        rangeHeader,
		ContentDisposition: r.ContentDisposition,
	}

	if end, err := strconv.ParseInt(r.EndByte, 10, 64); err == nil {
		req.EndByte = &end
	}

	return req
}

type bulkRequest struct {
	Resources string `query:"resources" validate:"required"`
	Progress  bool   `query:"progress"`
}

type lookupRequest struct {
	Path string `query:"path" validate:"required"`
	Test bool   `query:"test"`
}

type pathRequest struct {
	Type string `query:"type" validate:"required"`
}

type notificationRequest struct {
	Since string `query:"since" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// bindQuery fills req from the query string and validates it.
func bindQuery(c echo.Context, req interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return vr.NewError(vr.KindInvalidParameter, "", "Invalid query parameters: %s", bindMessage(err))
	}

	return c.Validate(req)
}

func bindMessage(err error) interface{} {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Message
	}

	return err.Error()
}
