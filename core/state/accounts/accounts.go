package accounts

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/cosmos/iavl"
	"github.com/tendermint/go-amino"
)

const mainPrefix = byte('a')

var cdc = amino.NewCodec()

type RAccounts interface {
	Export(state *types.AppState)
	GetNonce(address types.Address) uint64
}

// Accounts keeps replay protection nonces of signed calls
type Accounts struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewAccounts(db *iavl.ImmutableTree) *Accounts {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	return &Accounts{db: immutableTree, list: map[types.Address]*Model{}, dirty: map[types.Address]struct{}{}}
}

func (a *Accounts) immutableTree() *iavl.ImmutableTree {
	db := a.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (a *Accounts) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	a.db.Store(immutableTree)
}

func (a *Accounts) Commit(db *iavl.MutableTree) error {
	for _, address := range a.getOrderedDirty() {
		account := a.getFromMap(address)

		a.lock.Lock()
		delete(a.dirty, address)
		a.lock.Unlock()

		if !account.isDirty {
			continue
		}
		account.isDirty = false

		data, err := cdc.MarshalBinaryLengthPrefixed(account)
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}

		db.Set(pathOf(address), data)
	}

	return nil
}

// Discard drops every change made after the last commit
func (a *Accounts) Discard() {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.list = map[types.Address]*Model{}
	a.dirty = map[types.Address]struct{}{}
}

func (a *Accounts) GetNonce(address types.Address) uint64 {
	account := a.get(address)
	if account == nil {
		return 0
	}

	return account.Nonce
}

func (a *Accounts) SetNonce(address types.Address, nonce uint64) {
	a.getOrNew(address).setNonce(nonce)
}

func (a *Accounts) Export(state *types.AppState) {
	a.immutableTree().IterateRange([]byte{mainPrefix}, []byte{mainPrefix + 1}, true, func(key []byte, value []byte) bool {
		address := types.BytesToAddress(key[1:])
		account := a.get(address)
		if account == nil || account.Nonce == 0 {
			return false
		}

		state.Accounts = append(state.Accounts, types.Account{
			Address: address,
			Nonce:   account.Nonce,
		})

		return false
	})
}

func (a *Accounts) get(address types.Address) *Model {
	if account := a.getFromMap(address); account != nil {
		return account
	}

	_, enc := a.immutableTree().Get(pathOf(address))
	if len(enc) == 0 {
		return nil
	}

	account := &Model{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, account); err != nil {
		panic(fmt.Sprintf("failed to decode account at address %s: %s", address.String(), err))
	}

	account.address = address
	account.markDirty = a.markDirty

	a.setToMap(address, account)

	return account
}

func (a *Accounts) getOrNew(address types.Address) *Model {
	account := a.get(address)
	if account == nil {
		account = &Model{
			address:   address,
			markDirty: a.markDirty,
		}
		a.setToMap(address, account)
	}

	return account
}

func (a *Accounts) markDirty(address types.Address) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.dirty[address] = struct{}{}
}

func (a *Accounts) getOrderedDirty() []types.Address {
	a.lock.RLock()
	keys := make([]types.Address, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	a.lock.RUnlock()

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (a *Accounts) getFromMap(address types.Address) *Model {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.list[address]
}

func (a *Accounts) setToMap(address types.Address, model *Model) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.list[address] = model
}

func pathOf(address types.Address) []byte {
	return append([]byte{mainPrefix}, address.Bytes()...)
}
