package mcvrclient

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/pkg/errors"
)

// DefaultChunkSize is the chunk size Upload sends.
const DefaultChunkSize = 8 * 1024 * 1024

// Client talks to the /api/v1 surface of an mcvr server.
type Client struct {
	r         *resty.Client
	ChunkSize int64
}

// New creates a client for the server at baseURL. An empty token makes
// anonymous calls.
func New(baseURL, token string) *Client {
	r := resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/api/v1")
	if token != "" {
		r.SetHeader("Girder-Token", token)
	}

	return &Client{r: r, ChunkSize: DefaultChunkSize}
}

// ListOptions narrows a listing. A zero Limit uses the server default.
type ListOptions struct {
	Name    string
	Offset  int
	Limit   int
	Sort    string
	SortDir int
}

func (o ListOptions) params() map[string]string {
	params := map[string]string{}
	if o.Name != "" {
		params["name"] = o.Name
	}
	if o.Offset > 0 {
		params["offset"] = strconv.Itoa(o.Offset)
	}
	if o.Limit > 0 {
		params["limit"] = strconv.Itoa(o.Limit)
	}
	if o.Sort != "" {
		params["sort"] = o.Sort
	}
	if o.SortDir != 0 {
		params["sortdir"] = strconv.Itoa(o.SortDir)
	}

	return params
}

func (c *Client) ListFolders(parentID string, opts ListOptions) ([]vr.FolderView, error) {
	var folders []vr.FolderView
	resp, err := c.r.R().
		SetQueryParams(opts.params()).
		SetQueryParam("parentType", "folder").
		SetQueryParam("parentId", parentID).
		SetResult(&folders).
		Get("/folder")

	return folders, checkResponse(resp, err)
}

func (c *Client) ListItems(folderID string, opts ListOptions) ([]vr.ItemView, error) {
	var items []vr.ItemView
	resp, err := c.r.R().
		SetQueryParams(opts.params()).
		SetQueryParam("folderId", folderID).
		SetResult(&items).
		Get("/item")

	return items, checkResponse(resp, err)
}

func (c *Client) GetFolder(id string) (*vr.FolderView, error) {
	var folder vr.FolderView
	resp, err := c.r.R().SetResult(&folder).Get("/folder/" + id)
	return &folder, checkResponse(resp, err)
}

func (c *Client) GetItem(id string) (*vr.ItemView, error) {
	var item vr.ItemView
	resp, err := c.r.R().SetResult(&item).Get("/item/" + id)
	return &item, checkResponse(resp, err)
}

func (c *Client) CreateFolder(parentID, name string) (*vr.FolderView, error) {
	var folder vr.FolderView
	resp, err := c.r.R().
		SetQueryParams(map[string]string{"parentType": "folder", "parentId": parentID, "name": name}).
		SetResult(&folder).
		Post("/folder")

	return &folder, checkResponse(resp, err)
}

// SetMapping makes the native folder id a mapping of fsPath, or unmaps it.
func (c *Client) SetMapping(id, fsPath string, isMapping bool) (*vr.FolderView, error) {
	var folder vr.FolderView
	resp, err := c.r.R().
		SetQueryParam("isMapping", strconv.FormatBool(isMapping)).
		SetQueryParam("fsPath", fsPath).
		SetResult(&folder).
		Put("/folder/" + id)

	return &folder, checkResponse(resp, err)
}

func (c *Client) DeleteFolder(id string) error {
	resp, err := c.r.R().Delete("/folder/" + id)
	return checkResponse(resp, err)
}

func (c *Client) FolderDetails(id string) (*vr.FolderDetails, error) {
	var details vr.FolderDetails
	resp, err := c.r.R().SetResult(&details).Get("/folder/" + id + "/details")
	return &details, checkResponse(resp, err)
}

// Lookup resolves a logical path such as "collection/data/mapped/a.txt".
// The document is returned raw since it may be a user, collection, folder
// or item. A miss with test set returns nil.
func (c *Client) Lookup(path string, test bool) (json.RawMessage, error) {
	resp, err := c.r.R().
		SetQueryParam("path", path).
		SetQueryParam("test", strconv.FormatBool(test)).
		Get("/resource/lookup")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if string(body) == "null" {
		return nil, nil
	}

	return json.RawMessage(body), nil
}

func (c *Client) ResourcePath(id, kind string) (string, error) {
	var p string
	resp, err := c.r.R().SetQueryParam("type", kind).SetResult(&p).Get("/resource/" + id + "/path")
	return p, checkResponse(resp, err)
}

func (c *Client) DeleteResources(res vr.Resources, progress bool) error {
	resp, err := c.r.R().
		SetQueryParam("resources", res.JSON()).
		SetQueryParam("progress", strconv.FormatBool(progress)).
		Delete("/resource")

	return checkResponse(resp, err)
}

func (c *Client) MoveResources(res vr.Resources, parentID string) error {
	resp, err := c.r.R().
		SetQueryParam("resources", res.JSON()).
		SetQueryParam("parentType", "folder").
		SetQueryParam("parentId", parentID).
		Put("/resource/move")

	return checkResponse(resp, err)
}

func (c *Client) CopyResources(res vr.Resources, parentID string) error {
	resp, err := c.r.R().
		SetQueryParam("resources", res.JSON()).
		SetQueryParam("parentType", "folder").
		SetQueryParam("parentId", parentID).
		Post("/resource/copy")

	return checkResponse(resp, err)
}

// Download streams the file id into w.
func (c *Client) Download(id string, w io.Writer) (int64, error) {
	resp, err := c.r.R().SetDoNotParseResponse(true).Get("/file/" + id + "/download")
	if err != nil {
		return 0, errors.Wrapf(err, "downloading %s", id)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		b, _ := io.ReadAll(body)
		return 0, toError(resp.StatusCode(), resp.Status(), b)
	}

	return io.Copy(w, body)
}

// Upload creates name in parentID and sends r in ChunkSize pieces.
func (c *Client) Upload(parentID, name string, r io.Reader, size int64) (*vr.FileView, error) {
	var upload struct {
		ID        string `json:"_id"`
		ModelType string `json:"_modelType"`
	}

	resp, err := c.r.R().
		SetQueryParams(map[string]string{
			"parentType": "folder",
			"parentId":   parentID,
			"name":       name,
			"size":       strconv.FormatInt(size, 10),
		}).
		Post("/file")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resp.Body(), &upload); err != nil {
		return nil, errors.Wrapf(err, "decoding upload for %s", name)
	}

	if upload.ModelType == vr.ModelFile {
		var file vr.FileView
		return &file, json.Unmarshal(resp.Body(), &file)
	}

	var offset int64
	buf := make([]byte, c.chunkSize())
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			resp, err = c.r.R().
				SetQueryParam("uploadId", upload.ID).
				SetQueryParam("offset", strconv.FormatInt(offset, 10)).
				SetHeader("Content-Type", "application/octet-stream").
				SetBody(buf[:n]).
				Post("/file/chunk")
			if err := checkResponse(resp, err); err != nil {
				return nil, err
			}
			offset += int64(n)
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "reading %s", name)
		}
	}

	var file vr.FileView
	if err := json.Unmarshal(resp.Body(), &file); err != nil {
		return nil, errors.Wrapf(err, "decoding file for %s", name)
	}

	return &file, nil
}

func (c *Client) UploadOffset(uploadID string) (int64, error) {
	var offset vr.UploadOffset
	resp, err := c.r.R().SetQueryParam("uploadId", uploadID).SetResult(&offset).Get("/file/offset")
	return offset.Offset, checkResponse(resp, err)
}

func (c *Client) chunkSize() int64 {
	if c.ChunkSize <= 0 {
		return DefaultChunkSize
	}

	return c.ChunkSize
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "request failed")
	}

	if resp.IsError() {
		return ToErrorFromResponse(resp)
	}

	return nil
}
