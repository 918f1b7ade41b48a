package stor

import (
	"strings"
	"sync"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

type InMemoryFolderStor struct {
	mu      sync.Mutex
	folders map[string]mcmodel.Folder

	// items is set by NewInMemoryItemStor so CountChildren can see items.
	items *InMemoryItemStor
}

func NewInMemoryFolderStor() *InMemoryFolderStor {
	return &InMemoryFolderStor{folders: make(map[string]mcmodel.Folder)}
}

func (s *InMemoryFolderStor) CreateFolder(folder *mcmodel.Folder) (*mcmodel.Folder, error) {
	var err error
	if folder.ID == "" {
		if folder.ID, err = newID(); err != nil {
			return nil, err
		}
	}

	folder.SetName(folder.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = *folder
	return folder, nil
}

func (s *InMemoryFolderStor) GetFolderByID(id string) (*mcmodel.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyFolder(f), nil
}

func (s *InMemoryFolderStor) GetChildFolderByName(parentID, parentCollection, name string) (*mcmodel.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(name)
	for _, f := range s.folders {
		if f.ParentID == parentID && f.ParentCollection == parentCollection && f.LowerName == lower {
			return copyFolder(f), nil
		}
	}

	return nil, ErrNotFound
}

func (s *InMemoryFolderStor) CountChildren(folderID string) (int64, int64, error) {
	s.mu.Lock()
	var folders int64
	for _, f := range s.folders {
		if f.ParentID == folderID && f.ParentCollection == mcmodel.ParentCollectionFolder {
			folders++
		}
	}
	s.mu.Unlock()

	var items int64
	if s.items != nil {
		items = s.items.countInFolder(folderID)
	}

	return folders, items, nil
}

func (s *InMemoryFolderStor) SetMapping(folderID string, isMapping bool, fsPath string) (*mcmodel.Folder, error) {
	if isMapping {
		folders, items, _ := s.CountChildren(folderID)
		if folders+items != 0 {
			return nil, ErrHasChildren
		}
	}

	s.mu.Lock()
	f, ok := s.folders[folderID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	f.IsMapping = isMapping
	f.FsPath = fsPath
	s.folders[folderID] = f
	s.mu.Unlock()

	return s.GetFolderByID(folderID)
}

func (s *InMemoryFolderStor) GrantAccess(folderID, userID string, level mcmodel.AccessLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[folderID]
	if !ok {
		return ErrNotFound
	}

	var access []mcmodel.FolderAccess
	for _, a := range f.Access {
		if a.UserID != userID {
			access = append(access, a)
		}
	}
	f.Access = append(access, mcmodel.FolderAccess{FolderID: folderID, UserID: userID, Level: level})
	s.folders[folderID] = f

	return nil
}

func copyFolder(f mcmodel.Folder) *mcmodel.Folder {
	f.Access = append([]mcmodel.FolderAccess(nil), f.Access...)
	return &f
}
