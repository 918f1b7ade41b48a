package stor

import (
	"strings"
	"sync"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryItemStor struct {
	mu    sync.Mutex
	items map[string]mcmodel.Item
}

// NewInMemoryItemStor creates an item stor and, when folders is non-nil,
// links it so folder child counts include items.
func NewInMemoryItemStor(folders *InMemoryFolderStor) *InMemoryItemStor {
	s := &InMemoryItemStor{items: make(map[string]mcmodel.Item)}
	if folders != nil {
		folders.items = s
	}

	return s
}

func (s *InMemoryItemStor) CreateItem(item *mcmodel.Item) (*mcmodel.Item, error) {
	var err error
	if item.ID == "" {
		if item.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	item.SetName(item.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return item, nil
}

func (s *InMemoryItemStor) GetItemByID(id string) (*mcmodel.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &item, nil
}

func (s *InMemoryItemStor) GetChildItemByName(folderID, name string) (*mcmodel.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(name)
	for _, item := range s.items {
		if item.FolderID == folderID && item.LowerName == lower {
			found := item
			return &found, nil
		}
	}

	return nil, ErrNotFound
}

func (s *InMemoryItemStor) countInFolder(folderID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, item := range s.items {
		if item.FolderID == folderID {
			count++
		}
	}

	return count
}
