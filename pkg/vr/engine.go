package vr

import (
	"context"

	"github.com/materials-commons/mcvr/pkg/lock"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/obj"
	"github.com/materials-commons/mcvr/pkg/vr/chunkstore"
	"github.com/tus/tusd/v2/pkg/handler"
)

// ChunkStore assembles upload chunks. Uploads are created with the final
// destination and permissions in their metadata; FinishUpload moves the
// assembled data into place.
type ChunkStore interface {
	NewUpload(ctx context.Context, info handler.FileInfo) (handler.Upload, error)
	GetUpload(ctx context.Context, id string) (handler.Upload, error)
	AsTerminatableUpload(upload handler.Upload) handler.TerminatableUpload
}

// Recorder receives operation outcomes and byte counts.
type Recorder interface {
	ObserveOp(op string, err error)
	AddBytes(direction string, n int64)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOp(string, error) {}
func (noopRecorder) AddBytes(string, int64)  {}

// Engine performs filesystem operations on authorized targets.
type Engine struct {
	opts        Options
	resolver    *Resolver
	stors       *stor.Stors
	chunks      ChunkStore
	progress    ProgressFactory
	metrics     Recorder
	uploadLocks *lock.IdLocker
}

type EngineOption func(*Engine)

func WithChunkStore(chunks ChunkStore) EngineOption {
	return func(e *Engine) { e.chunks = chunks }
}

func WithProgress(progress ProgressFactory) EngineOption {
	return func(e *Engine) { e.progress = progress }
}

func WithMetrics(metrics Recorder) EngineOption {
	return func(e *Engine) { e.metrics = metrics }
}

func NewEngine(stors *stor.Stors, opts Options, options ...EngineOption) *Engine {
	e := &Engine{
		opts:        opts,
		resolver:    NewResolver(stors.FolderStor, stors.UploadStor),
		stors:       stors,
		uploadLocks: lock.NewIdLocker(),
	}

	for _, option := range options {
		option(e)
	}

	if obj.IsNil(e.chunks) {
		e.chunks = chunkstore.New(opts.UploadDir)
	}

	if obj.IsNil(e.progress) {
		e.progress = NoopProgress{}
	}

	if obj.IsNil(e.metrics) {
		e.metrics = noopRecorder{}
	}

	return e
}

func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) observe(op string, err error) error {
	e.metrics.ObserveOp(op, err)
	return err
}
