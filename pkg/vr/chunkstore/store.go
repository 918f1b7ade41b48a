package chunkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-uuid"
	"github.com/tus/tusd/v2/pkg/handler"
	"golang.org/x/sys/unix"
)

// Metadata keys understood by FinishUpload.
const (
	MetaFilename    = "filename"
	MetaDestination = "destination"
	MetaPerms       = "perms"
)

// FileStore keeps in-progress upload data under Dir/__tus. Each upload has
// a data file named by its id and a json state file next to it.
type FileStore struct {
	Dir string
}

func New(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// NewUpload creates an empty data file for info. MetaData must carry the
// destination the data is moved to when the upload finishes.
func (s *FileStore) NewUpload(ctx context.Context, info handler.FileInfo) (handler.Upload, error) {
	if info.MetaData[MetaDestination] == "" {
		return nil, fmt.Errorf("upload metadata is missing %q", MetaDestination)
	}

	if info.ID == "" {
		id, err := uuid.GenerateUUID()
		if err != nil {
			return nil, err
		}
		info.ID = id
	}

	info.Offset = 0
	info.Storage = map[string]string{
		"Type": "mcvrstore",
		"Path": chunkPath(s.Dir, info.ID),
	}

	upload := &FileUpload{Dir: s.Dir, Info: info}

	if err := createFile(upload.chunkPath(), nil); err != nil {
		return nil, err
	}

	if err := upload.saveState(); err != nil {
		return nil, err
	}

	return upload, nil
}

// GetUpload loads the state of upload id. The offset is taken from the
// size of the data file.
func (s *FileStore) GetUpload(ctx context.Context, id string) (handler.Upload, error) {
	data, err := os.ReadFile(statePath(s.Dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			err = handler.ErrNotFound
		}
		return nil, err
	}

	var upload FileUpload
	if err := json.Unmarshal(data, &upload); err != nil {
		return nil, err
	}

	finfo, err := os.Stat(chunkPath(s.Dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			err = handler.ErrNotFound
		}
		return nil, err
	}

	upload.Dir = s.Dir
	upload.Info.Offset = finfo.Size()

	return &upload, nil
}

func (s *FileStore) AsTerminatableUpload(upload handler.Upload) handler.TerminatableUpload {
	return upload.(*FileUpload)
}

type FileUpload struct {
	Dir  string           `json:"-"`
	Info handler.FileInfo `json:"info"`
}

func (u *FileUpload) GetInfo(ctx context.Context) (handler.FileInfo, error) {
	return u.Info, nil
}

// WriteChunk writes src at offset. Anything past offset from an earlier,
// rejected chunk is discarded first.
func (u *FileUpload) WriteChunk(ctx context.Context, offset int64, src io.Reader) (int64, error) {
	file, err := os.OpenFile(u.chunkPath(), os.O_WRONLY, 0600)
	if err != nil {
		return 0, err
	}
	// Close explicitly so a failed close is reported.

	if err := file.Truncate(offset); err != nil {
		_ = file.Close()
		return 0, err
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		_ = file.Close()
		return 0, err
	}

	n, err := io.Copy(file, src)
	u.Info.Offset = offset + n
	if err != nil {
		_ = file.Close()
		return n, err
	}

	return n, file.Close()
}

func (u *FileUpload) GetReader(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(u.chunkPath())
}

func (u *FileUpload) Terminate(ctx context.Context) error {
	_ = os.Remove(u.chunkPath())
	_ = os.Remove(u.statePath())
	return nil
}

// FinishUpload moves the data to its destination and applies the
// requested permissions.
func (u *FileUpload) FinishUpload(ctx context.Context) error {
	dest := u.Info.MetaData[MetaDestination]

	if err := moveFile(u.chunkPath(), dest); err != nil {
		return err
	}

	if perms, err := strconv.ParseUint(u.Info.MetaData[MetaPerms], 0, 32); err == nil {
		if err := os.Chmod(dest, os.FileMode(perms)); err != nil {
			return err
		}
	}

	_ = os.Remove(u.statePath())
	return nil
}

func (u *FileUpload) chunkPath() string {
	return chunkPath(u.Dir, u.Info.ID)
}

func (u *FileUpload) statePath() string {
	return statePath(u.Dir, u.Info.ID)
}

func (u *FileUpload) saveState() error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	return createFile(u.statePath(), data)
}

// moveFile renames src over dst, copying when they are on different
// devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}

// createFile creates path with content, making its directory when missing.
// An existing file is truncated.
func createFile(path string, content []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("failed to create directory for %s: %s", path, err)
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	}

	if err != nil {
		return err
	}

	if content != nil {
		if _, err := file.Write(content); err != nil {
			_ = file.Close()
			return err
		}
	}

	return file.Close()
}

func statePath(dir, id string) string {
	return filepath.Join(dir, "__tus", fmt.Sprintf("%s.state", id))
}

func chunkPath(dir, id string) string {
	return filepath.Join(dir, "__tus", id)
}
