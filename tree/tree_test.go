package tree

import (
	"errors"
	"testing"

	"github.com/cosmos/iavl"
	db "github.com/tendermint/tm-db"
)

type testSaver struct {
	key, value []byte
	fail       bool
	immutable  *iavl.ImmutableTree
}

func (s *testSaver) Commit(db *iavl.MutableTree) error {
	if s.fail {
		db.Set(s.key, s.value)
		return errors.New("fail")
	}
	db.Set(s.key, s.value)
	return nil
}

func (s *testSaver) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	s.immutable = immutableTree
}

func TestMutableTree_Commit(t *testing.T) {
	t.Parallel()

	mtree, err := NewMutableTree(0, db.NewMemDB(), 1024, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, value := mtree.GetLastImmutable().Get([]byte("a")); value != nil {
		t.Fatal("empty tree should not contain values")
	}

	saver := &testSaver{key: []byte("a"), value: []byte("1")}
	_, version, err := mtree.Commit(saver)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Fatalf("version is %d, want 1", version)
	}

	if saver.immutable == nil {
		t.Fatal("saver did not receive immutable tree")
	}
	if _, value := saver.immutable.Get([]byte("a")); string(value) != "1" {
		t.Fatalf("value is %q, want 1", value)
	}

	saver.value = []byte("2")
	if _, _, err := mtree.Commit(saver); err != nil {
		t.Fatal(err)
	}

	old, err := mtree.GetLastImmutableAtHeight(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, value := old.Get([]byte("a")); string(value) != "1" {
		t.Fatalf("old version value is %q, want 1", value)
	}
	if _, value := mtree.GetLastImmutable().Get([]byte("a")); string(value) != "2" {
		t.Fatalf("last version value is %q, want 2", value)
	}
}

func TestMutableTree_Rollback(t *testing.T) {
	t.Parallel()

	mtree, err := NewMutableTree(0, db.NewMemDB(), 1024, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := mtree.Commit(&testSaver{key: []byte("a"), value: []byte("1")}); err != nil {
		t.Fatal(err)
	}
	hash := mtree.Hash()

	if _, _, err := mtree.Commit(&testSaver{key: []byte("b"), value: []byte("2"), fail: true}); err == nil {
		t.Fatal("commit should fail")
	}
	mtree.Rollback()

	if mtree.Version() != 1 {
		t.Fatalf("version is %d, want 1", mtree.Version())
	}
	if string(mtree.Hash()) != string(hash) {
		t.Fatal("hash changed after rollback")
	}

	if _, _, err := mtree.Commit(&testSaver{key: []byte("c"), value: []byte("3")}); err != nil {
		t.Fatal(err)
	}
	if _, value := mtree.GetLastImmutable().Get([]byte("b")); value != nil {
		t.Fatal("rolled back value is committed")
	}
}

func TestMutableTree_DeleteVersion(t *testing.T) {
	t.Parallel()

	memDB := db.NewMemDB()
	mtree, err := NewMutableTree(0, memDB, 1024, 0)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := mtree.Commit(&testSaver{key: []byte("a"), value: []byte{byte(i)}}); err != nil {
			t.Fatal(err)
		}
	}

	if err := mtree.DeleteVersion(1); err != nil {
		t.Fatal(err)
	}
	if err := mtree.DeleteVersion(100); err != nil {
		t.Fatal(err)
	}
	if len(mtree.AvailableVersions()) != 2 {
		t.Fatalf("available versions %v", mtree.AvailableVersions())
	}

	immutable, err := NewImmutableTree(3, memDB)
	if err != nil {
		t.Fatal(err)
	}
	if _, value := immutable.Get([]byte("a")); len(value) != 1 || value[0] != 2 {
		t.Fatalf("value is %v, want [2]", value)
	}

	reloaded, err := NewMutableTree(2, memDB, 1024, 0)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Version() != 2 {
		t.Fatalf("reloaded version is %d, want 2", reloaded.Version())
	}
}
