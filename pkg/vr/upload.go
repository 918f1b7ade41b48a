package vr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/vr/chunkstore"
	pkgerrors "github.com/pkg/errors"
	"github.com/tus/tusd/v2/pkg/handler"
)

// Chunk is one piece of upload data. Length is -1 when the sender did not
// declare it.
type Chunk struct {
	Body   io.Reader
	Length int64
}

// UploadOffset is what a client resumes from.
type UploadOffset struct {
	Offset int64 `json:"offset"`
}

// CreateFile starts an upload of name into the target directory. An empty
// placeholder is created straight away so a name collision fails here
// rather than at finalize. A zero size file is complete immediately and a
// body sent along with the request is treated as the first chunk. The
// result is either a *FileView or an *UploadView.
func (e *Engine) CreateFile(ctx context.Context, t *Target, name string, size int64, body *Chunk) (interface{}, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	if size < 0 {
		return nil, newError(KindInvalidParameter, "size", "Invalid size: %d", size)
	}

	if _, err := AsFolder(t.Path, t.Root); err != nil {
		return nil, err
	}

	if size == 0 && hasData(body) {
		return nil, e.observe("create_file", newError(KindChunkTooLarge, "chunk", "Received too many bytes."))
	}

	p := filepath.Join(t.Path, name)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, e.observe("create_file", fsError(err, "create", p))
	}
	_ = f.Close()

	if size == 0 {
		logOp("create_file", p, t.Root)
		fv, err := AsFile(p, t.Root)
		return fv, e.observe("create_file", err)
	}

	upload, err := e.startUpload(ctx, t, name, size)
	if err != nil {
		_ = os.Remove(p)
		return nil, e.observe("create_file", err)
	}

	if body == nil || body.Length == 0 {
		return uploadView(upload), e.observe("create_file", nil)
	}

	result, err := e.receiveChunk(ctx, t, upload, 0, body)
	if err != nil {
		// A rejected inline body leaves neither session nor placeholder.
		if derr := e.uploadLocks.WithLock(upload.ID, func() error {
			return e.dropUpload(ctx, upload, p)
		}); derr != nil {
			log.Warnf("Unable to remove rejected upload %s: %s", upload.ID, derr)
		}
		return nil, err
	}

	return result, nil
}

// hasData reports whether body carries at least one byte. A body of
// unknown length has its first byte peeked and put back.
func hasData(body *Chunk) bool {
	switch {
	case body == nil || body.Body == nil || body.Length == 0:
		return false
	case body.Length > 0:
		return true
	}

	var first [1]byte
	n, _ := io.ReadFull(body.Body, first[:])
	body.Body = io.MultiReader(bytes.NewReader(first[:n]), body.Body)
	return n > 0
}

func (e *Engine) startUpload(ctx context.Context, t *Target, name string, size int64) (*mcmodel.Upload, error) {
	dest := filepath.Join(t.Path, name)
	perms := e.opts.UploadPerms

	cu, err := e.chunks.NewUpload(ctx, handler.FileInfo{
		Size: size,
		MetaData: handler.MetaData{
			chunkstore.MetaFilename:    name,
			chunkstore.MetaDestination: dest,
			chunkstore.MetaPerms:       "0" + strconv.FormatUint(uint64(perms), 8),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "creating chunk storage for %s", dest)
	}

	info, err := cu.GetInfo(ctx)
	if err != nil {
		return nil, err
	}

	upload := &mcmodel.Upload{
		UserID:     t.User.ID,
		ParentID:   FolderID(t.Path, t.Root),
		ParentType: mcmodel.ParentCollectionFolder,
		Name:       name,
		Size:       size,
		ChunkID:    info.ID,
		Perms:      perms,
	}

	created, err := e.stors.UploadStor.CreateUpload(upload)
	if err != nil {
		_ = e.chunks.AsTerminatableUpload(cu).Terminate(ctx)
		return nil, pkgerrors.Wrapf(err, "creating upload for %s", dest)
	}

	log.WithFields(log.Fields{"upload": created.ID, "path": dest, "size": size}).Info("Upload started")
	return created, nil
}

// ReadChunk accepts the chunk at offset for the target's upload session.
// The target path is the upload's parent directory.
func (e *Engine) ReadChunk(ctx context.Context, t *Target, offset int64, chunk *Chunk) (interface{}, error) {
	if err := checkUploadOwner(t); err != nil {
		return nil, err
	}

	return e.receiveChunk(ctx, t, t.Upload, offset, chunk)
}

// Offset reports how many bytes of the target's upload have been received.
func (e *Engine) Offset(t *Target) (*UploadOffset, error) {
	if err := checkUploadOwner(t); err != nil {
		return nil, err
	}

	upload, err := e.stors.UploadStor.GetUploadByID(t.Upload.ID)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "loading upload %s", t.Upload.ID)
	}

	return &UploadOffset{Offset: upload.Received}, nil
}

// CancelUpload drops the session and its partial data. The placeholder is
// removed if nothing else was written to it.
func (e *Engine) CancelUpload(ctx context.Context, t *Target) error {
	if err := checkUploadOwner(t); err != nil && (t.Upload == nil || !t.User.IsAdmin()) {
		return err
	}

	upload := t.Upload
	p := filepath.Join(t.Path, upload.Name)
	return e.uploadLocks.WithLock(upload.ID, func() error {
		if err := e.dropUpload(ctx, upload, p); err != nil {
			return err
		}

		log.WithFields(log.Fields{"upload": upload.ID, "path": p}).Info("Upload cancelled")
		return nil
	})
}

// dropUpload removes the session, its chunk data and the placeholder at p
// if nothing else was written to it. Callers hold the upload's lock.
func (e *Engine) dropUpload(ctx context.Context, upload *mcmodel.Upload, p string) error {
	cu, err := e.chunks.GetUpload(ctx, upload.ChunkID)
	switch {
	case errors.Is(err, handler.ErrNotFound):
	case err != nil:
		return pkgerrors.Wrapf(err, "loading chunks for upload %s", upload.ID)
	default:
		_ = e.chunks.AsTerminatableUpload(cu).Terminate(ctx)
	}

	if err := e.stors.UploadStor.DeleteUpload(upload.ID); err != nil {
		return pkgerrors.Wrapf(err, "deleting upload %s", upload.ID)
	}

	if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() && fi.Size() == 0 {
		_ = os.Remove(p)
	}

	return nil
}

func checkUploadOwner(t *Target) error {
	if t.Upload == nil {
		return newError(KindInvalidParameter, "uploadId", "No upload session given.")
	}

	if t.User == nil || t.User.ID != t.Upload.UserID {
		return newError(KindNotUploadOwner, "", "You did not initiate this upload.")
	}

	return nil
}

// receiveChunk appends chunk to upload when offset is exactly what has been
// received so far. A rejected chunk leaves the received count untouched.
// Once everything has arrived the data is moved into place.
func (e *Engine) receiveChunk(ctx context.Context, t *Target, upload *mcmodel.Upload, offset int64, chunk *Chunk) (interface{}, error) {
	var result interface{}

	err := e.uploadLocks.WithLock(upload.ID, func() error {
		current, err := e.stors.UploadStor.GetUploadByID(upload.ID)
		if err != nil {
			return pkgerrors.Wrapf(err, "loading upload %s", upload.ID)
		}

		if current.Received != offset {
			return newError(KindOffsetMismatch, "offset",
				"Server has received %d bytes, but client sent offset %d.", current.Received, offset)
		}

		remaining := current.Remaining()
		if chunk.Length >= 0 {
			if err := e.checkChunkSize(chunk.Length, remaining); err != nil {
				return err
			}
		}

		cu, err := e.chunks.GetUpload(ctx, current.ChunkID)
		if err != nil {
			return pkgerrors.Wrapf(err, "loading chunks for upload %s", current.ID)
		}

		n, err := cu.WriteChunk(ctx, offset, io.LimitReader(chunk.Body, remaining+1))
		if err != nil {
			return fsError(err, "write chunk", filepath.Join(t.Path, current.Name))
		}

		if err := e.checkChunkSize(n, remaining); err != nil {
			return err
		}

		if err := e.stors.UploadStor.UpdateUploadReceived(current.ID, offset, offset+n); err != nil {
			if errors.Is(err, stor.ErrReceivedConflict) {
				return newError(KindOffsetMismatch, "offset", "Upload offset changed while receiving chunk.")
			}
			return pkgerrors.Wrapf(err, "updating upload %s", current.ID)
		}

		e.metrics.AddBytes("upload", n)
		current.Received = offset + n

		if !current.IsComplete() {
			result = uploadView(current)
			return nil
		}

		file, err := e.finishUpload(ctx, t, current, cu)
		if err != nil {
			return err
		}

		result = file
		return nil
	})

	if err != nil {
		return nil, e.observe("upload_chunk", err)
	}

	return result, e.observe("upload_chunk", nil)
}

func (e *Engine) checkChunkSize(n, remaining int64) error {
	switch {
	case n > remaining:
		return newError(KindChunkTooLarge, "chunk", "Received too many bytes.")
	case n < remaining && e.opts.MinChunkSize > 0 && n < e.opts.MinChunkSize:
		return newError(KindChunkTooSmall, "chunk", "Chunk is smaller than the minimum size.")
	default:
		return nil
	}
}

func (e *Engine) finishUpload(ctx context.Context, t *Target, upload *mcmodel.Upload, cu handler.Upload) (*FileView, error) {
	dest := filepath.Join(t.Path, upload.Name)

	if err := cu.FinishUpload(ctx); err != nil {
		return nil, fsError(err, "finalize", dest)
	}

	if err := e.stors.UploadStor.DeleteUpload(upload.ID); err != nil {
		log.Warnf("Unable to remove finished upload %s: %s", upload.ID, err)
	}

	logOp("upload", dest, t.Root)
	return AsFile(dest, t.Root)
}
