package tree

import (
	"fmt"
	"sync"

	"github.com/cosmos/iavl"
	dbm "github.com/tendermint/tm-db"
)

type saver interface {
	Commit(db *iavl.MutableTree) error
	SetImmutableTree(immutableTree *iavl.ImmutableTree)
}

// MTree mutable tree, used for txs delivery
type MTree interface {
	Commit(...saver) ([]byte, int64, error)
	Rollback()
	Version() int64
	Hash() []byte
	AvailableVersions() []int
	DeleteVersion(version int64) error
	GetLastImmutable() *iavl.ImmutableTree
	GetLastImmutableAtHeight(version int64) (*iavl.ImmutableTree, error)
}

// NewMutableTree creates and returns new MutableTree using given db.
// Versions above height are dropped, height 0 starts an empty tree.
// If you want to get read-only state, see NewImmutableTree
func NewMutableTree(height uint64, db dbm.DB, cacheSize int, initialVersion uint64) (MTree, error) {
	tree, err := iavl.NewMutableTreeWithOpts(db, cacheSize, &iavl.Options{InitialVersion: initialVersion})
	if err != nil {
		return nil, err
	}

	m := &mutableTree{
		tree: tree,
		db:   db,
	}

	if height == 0 {
		return m, nil
	}

	if _, err := tree.LoadVersionForOverwriting(int64(height)); err != nil {
		return nil, err
	}

	return m, nil
}

type mutableTree struct {
	tree *iavl.MutableTree
	db   dbm.DB

	lock sync.RWMutex
}

// GetLastImmutable returns the snapshot of the last saved version.
// An empty tree is returned before the first commit.
func (t *mutableTree) GetLastImmutable() *iavl.ImmutableTree {
	t.lock.RLock()
	defer t.lock.RUnlock()

	version := t.tree.Version()
	if version == 0 {
		return iavl.NewImmutableTree(t.db, 0)
	}

	immutable, err := t.tree.GetImmutable(version)
	if err != nil {
		panic(fmt.Sprintf("failed to get immutable tree at %d: %s", version, err))
	}

	return immutable
}

func (t *mutableTree) GetLastImmutableAtHeight(version int64) (*iavl.ImmutableTree, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.GetImmutable(version)
}

func (t *mutableTree) Version() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Version()
}

func (t *mutableTree) Hash() []byte {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.Hash()
}

func (t *mutableTree) AvailableVersions() []int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.tree.AvailableVersions()
}

// Commit flushes every saver into the working tree and saves a new version.
// On error the working tree may hold a part of the writes, call Rollback.
func (t *mutableTree) Commit(savers ...saver) (hash []byte, version int64, err error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, saver := range savers {
		if err := saver.Commit(t.tree); err != nil {
			return nil, 0, err
		}
	}

	hash, version, err = t.tree.SaveVersion()
	if err != nil {
		return nil, 0, err
	}

	immutable, err := t.tree.GetImmutable(version)
	if err != nil {
		return nil, 0, err
	}

	for _, saver := range savers {
		saver.SetImmutableTree(immutable)
	}

	return hash, version, nil
}

// Rollback drops unsaved changes of the working tree
func (t *mutableTree) Rollback() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tree.Rollback()
}

// DeleteVersion removes version from the disk, missing versions are ignored
func (t *mutableTree) DeleteVersion(version int64) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.tree.VersionExists(version) {
		return nil
	}

	return t.tree.DeleteVersion(version)
}

// NewImmutableTree returns read-only tree of the given version
func NewImmutableTree(height uint64, db dbm.DB) (*iavl.ImmutableTree, error) {
	tree, err := iavl.NewMutableTree(db, 1024)
	if err != nil {
		return nil, err
	}
	if _, err := tree.LazyLoadVersion(int64(height)); err != nil {
		return nil, err
	}
	return tree.GetImmutable(int64(height))
}
