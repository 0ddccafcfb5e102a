package whitelist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-presale/core/state/bus"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/helpers"
	"github.com/cosmos/iavl"
	"github.com/tendermint/go-amino"
)

const (
	mainPrefix     = byte('w')
	configPrefix   = byte('c')
	entryPrefix    = byte('u')
	userListPrefix = byte('l')
)

var cdc = amino.NewCodec()

type RWhitelist interface {
	Export(state *types.AppState)
	Contract() types.Address
	Owner() types.Address
	Count() uint64
	Get(wallet types.Address) *Entry
	List(page, limit uint64) []types.Address
}

// Whitelist is the owner curated allocation registry.
// Wallets are kept in an indexed user list so removal is O(1).
type Whitelist struct {
	config      *Model
	dirtyConfig bool

	entries      map[types.Address]*Entry
	dirtyEntries map[types.Address]struct{}

	users      map[uint64]*user
	dirtyUsers map[uint64]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewWhitelist(stateBus *bus.Bus, db *iavl.ImmutableTree) *Whitelist {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	whitelist := &Whitelist{db: immutableTree}
	whitelist.reset()
	stateBus.SetWhitelist(NewBus(whitelist))

	return whitelist
}

func (w *Whitelist) reset() {
	w.config = nil
	w.dirtyConfig = false
	w.entries = map[types.Address]*Entry{}
	w.dirtyEntries = map[types.Address]struct{}{}
	w.users = map[uint64]*user{}
	w.dirtyUsers = map[uint64]struct{}{}
}

func (w *Whitelist) immutableTree() *iavl.ImmutableTree {
	db := w.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (w *Whitelist) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	w.db.Store(immutableTree)
}

func (w *Whitelist) Commit(db *iavl.MutableTree) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.dirtyConfig {
		w.dirtyConfig = false
		data, err := cdc.MarshalBinaryLengthPrefixed(w.config)
		if err != nil {
			return fmt.Errorf("can't encode whitelist config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	for _, wallet := range w.getOrderedDirtyEntries() {
		entry := w.entries[wallet]
		delete(w.dirtyEntries, wallet)

		if entry.removed {
			db.Remove(entryPath(wallet))
			delete(w.entries, wallet)
			continue
		}

		data, err := cdc.MarshalBinaryLengthPrefixed(entry)
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", wallet.String(), err)
		}
		db.Set(entryPath(wallet), data)
	}

	for _, index := range w.getOrderedDirtyUsers() {
		u := w.users[index]
		delete(w.dirtyUsers, index)

		if u.removed {
			db.Remove(userPath(index))
			delete(w.users, index)
			continue
		}
		db.Set(userPath(index), u.wallet.Bytes())
	}

	return nil
}

// Discard drops every change made after the last commit
func (w *Whitelist) Discard() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.reset()
}

func (w *Whitelist) Contract() types.Address {
	return w.getConfig().Contract
}

func (w *Whitelist) Owner() types.Address {
	return w.getConfig().Owner
}

func (w *Whitelist) Count() uint64 {
	return w.getConfig().Count
}

func (w *Whitelist) SetConfig(contract types.Address, owner types.Address) {
	config := w.getConfig()

	w.lock.Lock()
	defer w.lock.Unlock()

	config.Contract = contract
	config.Owner = owner
	w.dirtyConfig = true
}

func (w *Whitelist) SetOwner(owner types.Address) {
	config := w.getConfig()

	w.lock.Lock()
	defer w.lock.Unlock()

	config.Owner = owner
	w.dirtyConfig = true
}

// Get returns nil for unknown wallets
func (w *Whitelist) Get(wallet types.Address) *Entry {
	w.lock.RLock()
	entry, ok := w.entries[wallet]
	w.lock.RUnlock()
	if ok {
		if entry.removed {
			return nil
		}
		return entry
	}

	_, enc := w.immutableTree().Get(entryPath(wallet))
	if len(enc) == 0 {
		return nil
	}

	entry = &Entry{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, entry); err != nil {
		panic(fmt.Sprintf("failed to decode whitelist entry at %s: %s", wallet.String(), err))
	}
	entry.wallet = wallet

	w.lock.Lock()
	w.entries[wallet] = entry
	w.lock.Unlock()

	return entry
}

// Upsert appends a new wallet to the user list or updates caps of a stored one keeping its slot
func (w *Whitelist) Upsert(wallet types.Address, publicAllocation uint64, privateAllocation uint64) {
	if entry := w.Get(wallet); entry != nil {
		w.lock.Lock()
		entry.PublicAllocation = publicAllocation
		entry.PrivateAllocation = privateAllocation
		w.dirtyEntries[wallet] = struct{}{}
		w.lock.Unlock()
		return
	}

	config := w.getConfig()

	w.lock.Lock()
	defer w.lock.Unlock()

	index := config.Count
	w.users[index] = &user{wallet: wallet}
	w.dirtyUsers[index] = struct{}{}

	w.entries[wallet] = &Entry{
		PublicAllocation:  publicAllocation,
		PrivateAllocation: privateAllocation,
		Index:             index,
		wallet:            wallet,
	}
	w.dirtyEntries[wallet] = struct{}{}

	config.Count++
	w.dirtyConfig = true
}

// Remove swaps the wallet slot with the last one and truncates the list.
// Unknown wallets are ignored.
func (w *Whitelist) Remove(wallet types.Address) {
	entry := w.Get(wallet)
	if entry == nil {
		return
	}

	config := w.getConfig()
	last := config.Count - 1

	if entry.Index != last {
		lastWallet := w.userAt(last)
		moved := w.Get(lastWallet)

		w.lock.Lock()
		w.users[entry.Index] = &user{wallet: lastWallet}
		w.dirtyUsers[entry.Index] = struct{}{}
		moved.Index = entry.Index
		w.dirtyEntries[lastWallet] = struct{}{}
		w.lock.Unlock()
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	w.users[last] = &user{removed: true}
	w.dirtyUsers[last] = struct{}{}

	entry.removed = true
	w.dirtyEntries[wallet] = struct{}{}

	config.Count = last
	w.dirtyConfig = true
}

// List returns wallets of the page, empty when the page is out of range
func (w *Whitelist) List(page, limit uint64) []types.Address {
	start, end := helpers.PageBounds(page, limit, w.Count())

	wallets := make([]types.Address, 0, end-start)
	for i := start; i < end; i++ {
		wallets = append(wallets, w.userAt(i))
	}

	return wallets
}

func (w *Whitelist) Export(state *types.AppState) {
	state.Whitelist.Contract = w.Contract()
	state.Whitelist.Owner = w.Owner()

	count := w.Count()
	for i := uint64(0); i < count; i++ {
		wallet := w.userAt(i)
		entry := w.Get(wallet)
		state.Whitelist.Users = append(state.Whitelist.Users, types.AllowlistEntry{
			Wallet:            wallet,
			PublicAllocation:  entry.PublicAllocation,
			PrivateAllocation: entry.PrivateAllocation,
		})
	}
}

func (w *Whitelist) getConfig() *Model {
	w.lock.RLock()
	config := w.config
	w.lock.RUnlock()
	if config != nil {
		return config
	}

	config = &Model{}
	_, enc := w.immutableTree().Get([]byte{mainPrefix, configPrefix})
	if len(enc) != 0 {
		if err := cdc.UnmarshalBinaryLengthPrefixed(enc, config); err != nil {
			panic(fmt.Sprintf("failed to decode whitelist config: %s", err))
		}
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	if w.config == nil {
		w.config = config
	}

	return w.config
}

func (w *Whitelist) userAt(index uint64) types.Address {
	w.lock.RLock()
	u, ok := w.users[index]
	w.lock.RUnlock()
	if ok {
		return u.wallet
	}

	_, enc := w.immutableTree().Get(userPath(index))
	u = &user{wallet: types.BytesToAddress(enc)}

	w.lock.Lock()
	w.users[index] = u
	w.lock.Unlock()

	return u.wallet
}

func (w *Whitelist) getOrderedDirtyEntries() []types.Address {
	keys := make([]types.Address, 0, len(w.dirtyEntries))
	for k := range w.dirtyEntries {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (w *Whitelist) getOrderedDirtyUsers() []uint64 {
	keys := make([]uint64, 0, len(w.dirtyUsers))
	for k := range w.dirtyUsers {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	return keys
}

func entryPath(wallet types.Address) []byte {
	return append([]byte{mainPrefix, entryPrefix}, wallet.Bytes()...)
}

func userPath(index uint64) []byte {
	path := make([]byte, 2+8)
	path[0], path[1] = mainPrefix, userListPrefix
	binary.BigEndian.PutUint64(path[2:], index)
	return path
}
