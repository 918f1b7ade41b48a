package vr

import (
	"os"
	"path/filepath"

	"github.com/materials-commons/mcvr/pkg/config"
)

// Options is the engine configuration. It is built once at startup and
// not changed afterwards.
type Options struct {
	// UploadDir holds chunk data for in-progress uploads.
	UploadDir string

	// UploadPerms is applied to a file when its upload finalizes.
	UploadPerms os.FileMode

	// MinChunkSize is the smallest accepted chunk other than the last one.
	// Zero disables the check.
	MinChunkSize int64

	DownloadBufSize int
	DefaultLimit    int
}

const (
	DefaultUploadPerms     os.FileMode = 0600
	DefaultMinChunkSize                = 5 * 1024 * 1024
	DefaultDownloadBufSize             = 65536
	DefaultListLimit                   = 50
)

func DefaultOptions() Options {
	return Options{
		UploadDir:       filepath.Join(os.TempDir(), "mcvr-uploads"),
		UploadPerms:     DefaultUploadPerms,
		MinChunkSize:    DefaultMinChunkSize,
		DownloadBufSize: DefaultDownloadBufSize,
		DefaultLimit:    DefaultListLimit,
	}
}

// OptionsFromConfig reads the MCVR_* keys, falling back to DefaultOptions.
func OptionsFromConfig(c config.Configer) Options {
	d := DefaultOptions()
	return Options{
		UploadDir:       c.GetPathKeyWithDefault("MCVR_UPLOAD_DIR", d.UploadDir),
		UploadPerms:     os.FileMode(c.GetInt64KeyWithDefault("MCVR_UPLOAD_PERMS", int64(d.UploadPerms))),
		MinChunkSize:    c.GetInt64KeyWithDefault("MCVR_MIN_CHUNK_SIZE", d.MinChunkSize),
		DownloadBufSize: c.GetIntKeyWithDefault("MCVR_DOWNLOAD_BUF_SIZE", d.DownloadBufSize),
		DefaultLimit:    c.GetIntKeyWithDefault("MCVR_DEFAULT_LIMIT", d.DefaultLimit),
	}
}
