package vr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DownloadRequest is the caller's view of the range wanted. A Range header
// wins over Offset/EndByte.
type DownloadRequest struct {
	Offset             int64
	EndByte            *int64
	RangeHeader        string
	ContentDisposition string
}

// Download is a resolved byte range of one file. End is exclusive.
type Download struct {
	Path        string
	Name        string
	Size        int64
	Offset      int64
	End         int64
	Disposition string
	bufSize     int
	recorder    Recorder
}

// PrepareDownload resolves the byte range of the target file to send.
func (e *Engine) PrepareDownload(t *Target, req DownloadRequest) (*Download, error) {
	f, err := AsFile(t.Path, t.Root)
	if err != nil {
		return nil, err
	}

	offset, end := req.Offset, f.Size
	if req.EndByte != nil {
		end = *req.EndByte
	}

	if rOffset, rEnd, ok := parseRange(req.RangeHeader, f.Size); ok {
		offset, end = rOffset, rEnd
	}

	if offset < 0 {
		return nil, newError(KindInvalidParameter, "offset", "Offset must not be negative.")
	}

	if end > f.Size {
		end = f.Size
	}

	disposition := req.ContentDisposition
	if disposition == "" {
		disposition = "attachment"
	}

	if disposition != "inline" && disposition != "attachment" {
		return nil, newError(KindInvalidParameter, "contentDisposition", "Unallowed contentDisposition type \"%s\".", disposition)
	}

	return &Download{
		Path:        t.Path,
		Name:        filepath.Base(t.Path),
		Size:        f.Size,
		Offset:      offset,
		End:         end,
		Disposition: disposition,
		bufSize:     e.opts.DownloadBufSize,
		recorder:    e.metrics,
	}, nil
}

func (d *Download) Length() int64 {
	if d.End < d.Offset {
		return 0
	}

	return d.End - d.Offset
}

func (d *Download) Partial() bool {
	return d.Size > 0 && (d.Offset > 0 || d.End < d.Size)
}

// SetHeaders writes the download headers and returns the status code. An
// empty range past the start of a non-empty file is 416.
func (d *Download) SetHeaders(h http.Header) int {
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.FormatInt(d.Length(), 10))

	if d.Disposition == "inline" {
		h.Set("Content-Disposition", "inline")
	} else {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", d.Name))
	}

	if !d.Partial() {
		return http.StatusOK
	}

	if d.Length() == 0 {
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", d.Size))
		return http.StatusRequestedRangeNotSatisfiable
	}

	h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", d.Offset, d.End-1, d.Size))
	return http.StatusPartialContent
}

// Stream writes the range to w in buffer sized chunks, stopping early
// when ctx is cancelled.
func (d *Download) Stream(ctx context.Context, w io.Writer) (int64, error) {
	written, err := d.stream(ctx, w)
	if d.recorder != nil {
		d.recorder.AddBytes("download", written)
	}

	return written, err
}

func (d *Download) stream(ctx context.Context, w io.Writer) (int64, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return 0, fsError(err, "open", d.Path)
	}
	defer f.Close()

	if _, err := f.Seek(d.Offset, io.SeekStart); err != nil {
		return 0, err
	}

	bufSize := d.bufSize
	if bufSize <= 0 {
		bufSize = DefaultDownloadBufSize
	}

	buf := make([]byte, bufSize)
	remaining := d.Length()
	var written int64

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		n, err := f.Read(chunk)
		if n > 0 {
			wn, werr := w.Write(chunk[:n])
			written += int64(wn)
			remaining -= int64(wn)
			if werr != nil {
				return written, werr
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// parseRange reads the first range of a "bytes=" header and returns it as
// [offset, end). Malformed and unsatisfiable headers are ignored.
func parseRange(header string, size int64) (int64, int64, bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}

	spec := strings.TrimSpace(strings.Split(strings.TrimPrefix(header, prefix), ",")[0])
	start, stop, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}

	start, stop = strings.TrimSpace(start), strings.TrimSpace(stop)

	if start == "" {
		// Suffix range: the last n bytes.
		n, err := strconv.ParseInt(stop, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size, true
	}

	offset, err := strconv.ParseInt(start, 10, 64)
	if err != nil || offset < 0 || offset >= size {
		return 0, 0, false
	}

	if stop == "" {
		return offset, size, true
	}

	last, err := strconv.ParseInt(stop, 10, 64)
	if err != nil || last < offset {
		return 0, 0, false
	}

	end := last + 1
	if end > size {
		end = size
	}

	return offset, end, true
}
