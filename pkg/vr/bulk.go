package vr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/vrid"
)

// Resources is the kind -> ids map bulk requests carry.
type Resources map[string][]string

// ParseResources decodes the JSON resources parameter. Only folder and
// item kinds are accepted.
func ParseResources(s string) (Resources, error) {
	var res Resources
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, &Error{Kind: KindInvalidParameter, Field: "resources", Message: "Invalid JSON passed in resources parameter.", Err: err}
	}

	for kind := range res {
		if kind != ModelFolder && kind != ModelItem {
			return nil, newError(KindInvalidParameter, "resources", "Invalid resource type: %s", kind)
		}
	}

	return res, nil
}

func (r Resources) Total() int {
	total := 0
	for _, ids := range r {
		total += len(ids)
	}

	return total
}

// JSON renders r with both kinds present, the shape the native handler
// expects.
func (r Resources) JSON() string {
	out := map[string][]string{ModelFolder: {}, ModelItem: {}}
	for kind, ids := range r {
		out[kind] = append(out[kind], ids...)
	}

	b, _ := json.Marshal(out)
	return string(b)
}

// BulkEntry is one virtual resource a bulk operation will act on.
type BulkEntry struct {
	Kind string
	Path string
	Root *mcmodel.Folder
}

// BulkSet is a partitioned bulk request: the virtual entries in processing
// order and the ids left for the native handler.
type BulkSet struct {
	Entries   []BulkEntry
	Remaining Resources
}

// Partition splits res into virtual entries the user holds level on and
// native ids. Virtual ids the user cannot reach are dropped without error.
// Items are ordered before folders so moving a folder cannot invalidate the
// path of an item below it.
func (e *Engine) Partition(res Resources, user *mcmodel.User, level mcmodel.AccessLevel) (*BulkSet, error) {
	set := &BulkSet{Remaining: Resources{}}

	kinds := make([]string, 0, len(res))
	for kind := range res {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		for _, id := range res[kind] {
			if !vrid.IsVirtual(id) {
				set.Remaining[kind] = append(set.Remaining[kind], id)
				continue
			}

			p, rootID, err := vrid.Decode(id)
			if err != nil {
				return nil, &Error{Kind: KindMalformedIdentifier, Field: "resources", Message: "Invalid virtual resource id: " + id, Err: err}
			}

			t, err := e.resolver.Authorize(&Location{Path: p, RootID: rootID}, user, level)
			if err != nil {
				log.WithFields(log.Fields{"id": id, "reason": err}).Debug("Skipping inaccessible resource")
				continue
			}

			if isRootPath(t.Path, t.Root) {
				set.Remaining[kind] = append(set.Remaining[kind], t.Root.ID)
				continue
			}

			set.Entries = append(set.Entries, BulkEntry{Kind: kind, Path: t.Path, Root: t.Root})
		}
	}

	sort.SliceStable(set.Entries, func(i, j int) bool {
		return set.Entries[i].Kind == ModelItem && set.Entries[j].Kind == ModelFolder
	})

	return set, nil
}

// BulkDelete removes every virtual resource in res the user owns. The ids
// left for the native handler are returned.
func (e *Engine) BulkDelete(ctx context.Context, user *mcmodel.User, res Resources, withProgress bool) (Resources, error) {
	set, err := e.Partition(res, user, mcmodel.AccessOwn)
	if err != nil {
		return nil, err
	}

	err = e.runBulk(ctx, user, set, "Deleting resources", "Deleting", withProgress, func(entry BulkEntry) error {
		if entry.Kind == ModelFolder {
			return fsError(os.RemoveAll(entry.Path), "rmtree", entry.Path)
		}
		return fsError(os.Remove(entry.Path), "unlink", entry.Path)
	})

	return set.Remaining, e.observe("bulk_delete", err)
}

// BulkCopy copies every readable virtual resource in res into dest.
// Folders must not collide with an existing name; items get a unique name.
func (e *Engine) BulkCopy(ctx context.Context, dest *Target, res Resources, withProgress bool) (Resources, error) {
	if _, err := AsFolder(dest.Path, dest.Root); err != nil {
		return nil, err
	}

	set, err := e.Partition(res, dest.User, mcmodel.AccessRead)
	if err != nil {
		return nil, err
	}

	err = e.runBulk(ctx, dest.User, set, "Copying resources", "Copying", withProgress, func(entry BulkEntry) error {
		target := filepath.Join(dest.Path, filepath.Base(entry.Path))
		if entry.Kind == ModelFolder {
			if isSubpath(target, entry.Path) {
				return newError(KindInvalidParameter, "parentId", "A folder cannot be copied into itself.")
			}
			return fsError(copyTree(entry.Path, target), "copytree", target)
		}

		target = uniquePath(target)
		return fsError(copyFile(entry.Path, target), "copy", target)
	})

	return set.Remaining, e.observe("bulk_copy", err)
}

// BulkMove moves every writable virtual resource in res into dest.
func (e *Engine) BulkMove(ctx context.Context, dest *Target, res Resources, withProgress bool) (Resources, error) {
	if _, err := AsFolder(dest.Path, dest.Root); err != nil {
		return nil, err
	}

	set, err := e.Partition(res, dest.User, mcmodel.AccessWrite)
	if err != nil {
		return nil, err
	}

	err = e.runBulk(ctx, dest.User, set, "Moving resources", "Moving", withProgress, func(entry BulkEntry) error {
		target := filepath.Join(dest.Path, filepath.Base(entry.Path))
		if target == entry.Path {
			return nil
		}

		if entry.Kind == ModelFolder && isSubpath(target, entry.Path) {
			return newError(KindInvalidParameter, "parentId", "A folder cannot be moved into itself.")
		}

		return fsError(movePath(entry.Path, target), "move", target)
	})

	return set.Remaining, e.observe("bulk_move", err)
}

func (e *Engine) runBulk(ctx context.Context, user *mcmodel.User, set *BulkSet, title, verb string, withProgress bool, apply func(BulkEntry) error) error {
	progress := e.progress.Begin(user, title, len(set.Entries), withProgress)

	var err error
	for _, entry := range set.Entries {
		if err = ctx.Err(); err != nil {
			break
		}

		progress.Update(fmt.Sprintf("%s %s %s", verb, entry.Kind, filepath.Base(entry.Path)), 0)
		if err = apply(entry); err != nil {
			break
		}

		logOp(verb, entry.Path, entry.Root)
		progress.Update("", 1)
	}

	progress.Done(err)
	return err
}
