package stor

import (
	"sync"
	"time"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryUploadStor struct {
	mu      sync.Mutex
	uploads map[string]mcmodel.Upload
}

func NewInMemoryUploadStor() *InMemoryUploadStor {
	return &InMemoryUploadStor{uploads: make(map[string]mcmodel.Upload)}
}

func (s *InMemoryUploadStor) CreateUpload(upload *mcmodel.Upload) (*mcmodel.Upload, error) {
	var err error
	if upload.ID == "" {
		if upload.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	upload.CreatedAt, upload.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[upload.ID] = *upload
	return upload, nil
}

func (s *InMemoryUploadStor) GetUploadByID(id string) (*mcmodel.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, ok := s.uploads[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &upload, nil
}

func (s *InMemoryUploadStor) UpdateUploadReceived(id string, from, to int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, ok := s.uploads[id]
	switch {
	case !ok:
		return ErrNotFound
	case upload.Received != from:
		return ErrReceivedConflict
	}

	upload.Received = to
	upload.UpdatedAt = time.Now()
	s.uploads[id] = upload
	return nil
}

func (s *InMemoryUploadStor) DeleteUpload(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, id)
	return nil
}
