package webapi

import (
	"io"
	"mime"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/vr"
)

type FileController struct {
	virtualController
}

func NewFileController(engine *vr.Engine, native echo.HandlerFunc) *FileController {
	return &FileController{virtualController{engine: engine, native: native}}
}

// CreateFile starts an upload into the parent folder. A request body that
// is not a form is taken as the whole file.
func (c *FileController) CreateFile(ctx echo.Context) error {
	var req createFileRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	var body *vr.Chunk
	r := ctx.Request()
	if r.ContentLength > 0 && !isFormContent(r.Header.Get(echo.HeaderContentType)) {
		body = &vr.Chunk{Body: r.Body, Length: r.ContentLength}
	}

	result, err := c.engine.CreateFile(r.Context(), target(ctx), req.Name, req.Size, body)
	return c.respond(ctx, result, err)
}

func (c *FileController) GetFile(ctx echo.Context) error {
	t := target(ctx)
	file, err := vr.AsFile(t.Path, t.Root)
	return c.respond(ctx, file, err)
}

func (c *FileController) UpdateFile(ctx echo.Context) error {
	var req struct {
		Name string `query:"name"`
	}
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	file, err := c.engine.UpdateFile(target(ctx), req.Name)
	return c.respond(ctx, file, err)
}

func (c *FileController) DeleteFile(ctx echo.Context) error {
	t := target(ctx)
	err := c.engine.DeleteItem(t)
	return c.respond(ctx, deletedMessage(vr.ModelFile, t), err)
}

func (c *FileController) DownloadFile(ctx echo.Context) error {
	return c.download(ctx, target(ctx))
}

// ReadChunk accepts the next chunk of an upload, either as the raw request
// body or as the "chunk" field of a multipart form.
func (c *FileController) ReadChunk(ctx echo.Context) error {
	var req chunkRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	chunk, closer, err := chunkFromRequest(ctx)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := c.engine.ReadChunk(ctx.Request().Context(), target(ctx), req.Offset, chunk)
	return c.respond(ctx, result, err)
}

func (c *FileController) GetUploadOffset(ctx echo.Context) error {
	offset, err := c.engine.Offset(target(ctx))
	return c.respond(ctx, offset, err)
}

func (c *FileController) CancelUpload(ctx echo.Context) error {
	err := c.engine.CancelUpload(ctx.Request().Context(), target(ctx))
	return c.respond(ctx, message{Message: "Upload canceled."}, err)
}

func chunkFromRequest(ctx echo.Context) (*vr.Chunk, io.Closer, error) {
	r := ctx.Request()
	if !strings.HasPrefix(mediaType(r.Header.Get(echo.HeaderContentType)), "multipart/") {
		return &vr.Chunk{Body: r.Body, Length: r.ContentLength}, nil, nil
	}

	fh, err := ctx.FormFile("chunk")
	if err != nil {
		return nil, nil, vr.NewError(vr.KindInvalidParameter, "chunk", "Parameter 'chunk' is required.")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	return &vr.Chunk{Body: f, Length: fh.Size}, f, nil
}

func isFormContent(contentType string) bool {
	mt := mediaType(contentType)
	return mt == echo.MIMEApplicationForm || strings.HasPrefix(mt, "multipart/")
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return mt
}
