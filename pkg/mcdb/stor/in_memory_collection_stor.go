package stor

import (
	"sync"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryCollectionStor struct {
	mu          sync.Mutex
	collections map[string]mcmodel.Collection
}

func NewInMemoryCollectionStor() *InMemoryCollectionStor {
	return &InMemoryCollectionStor{collections: make(map[string]mcmodel.Collection)}
}

func (s *InMemoryCollectionStor) CreateCollection(collection *mcmodel.Collection) (*mcmodel.Collection, error) {
	var err error
	if collection.ID == "" {
		if collection.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.ID] = *collection
	return collection, nil
}

func (s *InMemoryCollectionStor) GetCollectionByID(id string) (*mcmodel.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &c, nil
}

func (s *InMemoryCollectionStor) GetCollectionByName(name string) (*mcmodel.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.Name == name {
			found := c
			return &found, nil
		}
	}

	return nil, ErrNotFound
}
