package vr

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	pkgerrors "github.com/pkg/errors"
)

// LookupResult is the document a logical path names and its model type.
type LookupResult struct {
	Model    string
	Document interface{}
}

// errLookupMiss marks a failed hop; Lookup reports it as PathNotFound for
// the whole path.
var errLookupMiss = errors.New("lookup miss")

// Lookup resolves a logical path such as "collection/c/f1/sub/file.txt".
// The first two segments name a user or collection, the rest walk native
// folders and items until a mapping root is reached; whatever is left is
// looked up on disk below it. With test set, a miss returns a nil result
// instead of PathNotFound.
func (e *Engine) Lookup(path string, user *mcmodel.User, test bool) (*LookupResult, error) {
	path = strings.TrimLeft(path, "/")
	segments := splitLogicalPath(path)
	if len(segments) < 2 {
		return nil, newError(KindInvalidPathFormat, "path", "Invalid path format")
	}

	base, err := e.lookupBase(segments[0], segments[1], user)
	switch {
	case IsKind(err, KindPathNotFound) && test:
		return nil, nil
	case err != nil:
		return nil, err
	}

	result, err := e.lookupFrom(base, segments, path, user)
	switch {
	case errors.Is(err, errLookupMiss) && test:
		return nil, nil
	case errors.Is(err, errLookupMiss):
		return nil, newError(KindPathNotFound, "path", "Path not found: %s", path)
	case err != nil:
		return nil, err
	}

	return result, nil
}

type lookupNode struct {
	model      string
	user       *mcmodel.User
	collection *mcmodel.Collection
	folder     *mcmodel.Folder
	item       *mcmodel.Item
}

func (e *Engine) lookupBase(model, name string, user *mcmodel.User) (*lookupNode, error) {
	switch model {
	case mcmodel.ParentCollectionUser:
		u, err := e.stors.UserStor.GetUserByLogin(name)
		switch {
		case errors.Is(err, stor.ErrNotFound):
			return nil, newError(KindPathNotFound, "path", "User not found: %s", name)
		case err != nil:
			return nil, pkgerrors.Wrapf(err, "loading user %s", name)
		}
		return &lookupNode{model: model, user: u}, nil

	case mcmodel.ParentCollectionCollection:
		c, err := e.stors.CollectionStor.GetCollectionByName(name)
		switch {
		case errors.Is(err, stor.ErrNotFound):
			return nil, newError(KindPathNotFound, "path", "Collection not found: %s", name)
		case err != nil:
			return nil, pkgerrors.Wrapf(err, "loading collection %s", name)
		}
		return &lookupNode{model: model, collection: c}, nil

	default:
		return nil, newError(KindInvalidPathFormat, "path", "Invalid path format")
	}
}

func (e *Engine) lookupFrom(node *lookupNode, segments []string, path string, user *mcmodel.User) (*LookupResult, error) {
	if node.levelFor(user) < mcmodel.AccessRead {
		return nil, errLookupMiss
	}

	tokens := segments[2:]
	for i, token := range tokens {
		next, err := e.lookupToken(node, token)
		if err != nil {
			return nil, err
		}

		if next.levelFor(user) < mcmodel.AccessRead {
			return nil, errLookupMiss
		}

		node = next
		if node.model == ModelFolder && node.folder.IsMappingRoot() && i < len(tokens)-1 {
			return e.lookupOnDisk(node.folder, tokens[i+1:], user)
		}
	}

	return node.result(user), nil
}

// lookupToken finds the child named token below node.
func (e *Engine) lookupToken(node *lookupNode, token string) (*lookupNode, error) {
	var (
		parentID, parentCollection string
	)

	switch node.model {
	case mcmodel.ParentCollectionUser:
		parentID, parentCollection = node.user.ID, mcmodel.ParentCollectionUser
	case mcmodel.ParentCollectionCollection:
		parentID, parentCollection = node.collection.ID, mcmodel.ParentCollectionCollection
	case ModelFolder:
		parentID, parentCollection = node.folder.ID, mcmodel.ParentCollectionFolder
	default:
		return nil, errLookupMiss
	}

	folder, err := e.stors.FolderStor.GetChildFolderByName(parentID, parentCollection, token)
	switch {
	case err == nil:
		return &lookupNode{model: ModelFolder, folder: folder}, nil
	case !errors.Is(err, stor.ErrNotFound):
		return nil, pkgerrors.Wrapf(err, "looking up %s", token)
	case node.model != ModelFolder:
		return nil, errLookupMiss
	}

	item, err := e.stors.ItemStor.GetChildItemByName(parentID, token)
	switch {
	case errors.Is(err, stor.ErrNotFound):
		return nil, errLookupMiss
	case err != nil:
		return nil, pkgerrors.Wrapf(err, "looking up %s", token)
	}

	// Items inherit the access of their folder.
	return &lookupNode{model: ModelItem, item: item, folder: node.folder}, nil
}

// lookupOnDisk resolves the remaining tokens below a mapping root.
func (e *Engine) lookupOnDisk(root *mcmodel.Folder, tokens []string, user *mcmodel.User) (*LookupResult, error) {
	p := filepath.Join(append([]string{root.FsPath}, tokens...)...)
	if !withinRoot(p, root) {
		return nil, errLookupMiss
	}

	level := root.LevelFor(user)
	switch {
	case isDir(p):
		v, err := AsFolder(p, root)
		if err != nil {
			return nil, errLookupMiss
		}
		return &LookupResult{Model: ModelFolder, Document: v.Filter(user, level)}, nil

	default:
		v, err := AsItem(p, root)
		if err != nil {
			return nil, errLookupMiss
		}
		return &LookupResult{Model: ModelItem, Document: v}, nil
	}
}

func (n *lookupNode) levelFor(user *mcmodel.User) mcmodel.AccessLevel {
	switch n.model {
	case mcmodel.ParentCollectionUser:
		return n.user.LevelFor(user)
	case mcmodel.ParentCollectionCollection:
		return n.collection.LevelFor(user)
	default:
		return n.folder.LevelFor(user)
	}
}

func (n *lookupNode) result(user *mcmodel.User) *LookupResult {
	switch n.model {
	case mcmodel.ParentCollectionUser:
		return &LookupResult{Model: n.model, Document: n.user}
	case mcmodel.ParentCollectionCollection:
		return &LookupResult{Model: n.model, Document: n.collection}
	case ModelItem:
		return &LookupResult{Model: n.model, Document: ItemViewFromRecord(n.item)}
	default:
		return &LookupResult{Model: n.model, Document: FolderViewFromRecord(n.folder).Filter(user, n.folder.LevelFor(user))}
	}
}

// splitLogicalPath splits on "/" dropping empty segments.
func splitLogicalPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	return segments
}
