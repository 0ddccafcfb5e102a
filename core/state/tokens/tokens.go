package tokens

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-presale/core/state/bus"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/cosmos/iavl"
	"github.com/tendermint/go-amino"
)

const (
	mainPrefix      = byte('t')
	infoPrefix      = byte('i')
	balancePrefix   = byte('b')
	allowancePrefix = byte('a')
)

var cdc = amino.NewCodec()

type RTokens interface {
	Export(state *types.AppState)
	Exists(token types.Address) bool
	GetToken(token types.Address) *Model
	GetBalance(token types.Address, holder types.Address) uint64
	GetAllowance(token types.Address, owner types.Address, spender types.Address) uint64
}

// Tokens is the host ledger of fungible tokens: registry, balances and allowances
type Tokens struct {
	list  map[types.Address]*Model
	dirty map[types.Address]struct{}

	balances        map[balanceKey]uint64
	dirtyBalances   map[balanceKey]struct{}
	allowances      map[allowanceKey]uint64
	dirtyAllowances map[allowanceKey]struct{}

	db  atomic.Value
	bus *bus.Bus

	lock sync.RWMutex
}

func NewTokens(stateBus *bus.Bus, db *iavl.ImmutableTree) *Tokens {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	tokens := &Tokens{
		db:  immutableTree,
		bus: stateBus,
	}
	tokens.reset()
	tokens.bus.SetTokens(NewBus(tokens))

	return tokens
}

func (t *Tokens) reset() {
	t.list = map[types.Address]*Model{}
	t.dirty = map[types.Address]struct{}{}
	t.balances = map[balanceKey]uint64{}
	t.dirtyBalances = map[balanceKey]struct{}{}
	t.allowances = map[allowanceKey]uint64{}
	t.dirtyAllowances = map[allowanceKey]struct{}{}
}

func (t *Tokens) immutableTree() *iavl.ImmutableTree {
	db := t.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (t *Tokens) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	t.db.Store(immutableTree)
}

func (t *Tokens) Commit(db *iavl.MutableTree) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, address := range t.getOrderedDirty() {
		token := t.list[address]
		delete(t.dirty, address)

		if !token.isDirty {
			continue
		}
		token.isDirty = false

		data, err := cdc.MarshalBinaryLengthPrefixed(token)
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}
		db.Set(infoPath(address), data)
	}

	for _, key := range t.getOrderedDirtyBalances() {
		delete(t.dirtyBalances, key)
		setOrRemove(db, key.path(), t.balances[key])
	}

	for _, key := range t.getOrderedDirtyAllowances() {
		delete(t.dirtyAllowances, key)
		setOrRemove(db, key.path(), t.allowances[key])
	}

	return nil
}

// Discard drops every change made after the last commit
func (t *Tokens) Discard() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.reset()
}

func (t *Tokens) Exists(token types.Address) bool {
	return t.get(token) != nil
}

func (t *Tokens) GetToken(token types.Address) *Model {
	return t.get(token)
}

// Create registers a token. Total supply is credited by the caller via AddBalance.
func (t *Tokens) Create(token types.Address, name string, symbol string, decimals uint8, totalSupply uint64) {
	model := &Model{
		CName:        name,
		CSymbol:      symbol,
		CDecimals:    decimals,
		CTotalSupply: totalSupply,
		address:      token,
		isDirty:      true,
		markDirty:    t.markDirty,
	}

	t.lock.Lock()
	t.list[token] = model
	t.lock.Unlock()

	t.markDirty(token)
}

func (t *Tokens) GetBalance(token types.Address, holder types.Address) uint64 {
	key := balanceKey{token: token, holder: holder}

	t.lock.RLock()
	value, ok := t.balances[key]
	t.lock.RUnlock()
	if ok {
		return value
	}

	value = t.load(key.path())

	t.lock.Lock()
	t.balances[key] = value
	t.lock.Unlock()

	return value
}

func (t *Tokens) SetBalance(token types.Address, holder types.Address, value uint64) {
	key := balanceKey{token: token, holder: holder}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.balances[key] = value
	t.dirtyBalances[key] = struct{}{}
}

func (t *Tokens) AddBalance(token types.Address, holder types.Address, value uint64) {
	t.SetBalance(token, holder, t.GetBalance(token, holder)+value)
}

func (t *Tokens) SubBalance(token types.Address, holder types.Address, value uint64) {
	balance := t.GetBalance(token, holder)
	if balance < value {
		panic(fmt.Sprintf("negative balance of %s in token %s", holder.String(), token.String()))
	}
	t.SetBalance(token, holder, balance-value)
}

func (t *Tokens) GetAllowance(token types.Address, owner types.Address, spender types.Address) uint64 {
	key := allowanceKey{token: token, owner: owner, spender: spender}

	t.lock.RLock()
	value, ok := t.allowances[key]
	t.lock.RUnlock()
	if ok {
		return value
	}

	value = t.load(key.path())

	t.lock.Lock()
	t.allowances[key] = value
	t.lock.Unlock()

	return value
}

func (t *Tokens) SetAllowance(token types.Address, owner types.Address, spender types.Address, value uint64) {
	key := allowanceKey{token: token, owner: owner, spender: spender}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.allowances[key] = value
	t.dirtyAllowances[key] = struct{}{}
}

func (t *Tokens) Export(state *types.AppState) {
	t.immutableTree().IterateRange([]byte{mainPrefix, infoPrefix}, []byte{mainPrefix, infoPrefix + 1}, true, func(key []byte, value []byte) bool {
		address := types.BytesToAddress(key[2:])
		token := t.get(address)

		exported := types.Token{
			Address:     address,
			Name:        token.Name(),
			Symbol:      token.Symbol(),
			Decimals:    token.Decimals(),
			TotalSupply: token.TotalSupply(),
		}

		prefix := append([]byte{mainPrefix, balancePrefix}, address.Bytes()...)
		t.immutableTree().IterateRange(prefix, prefixEnd(prefix), true, func(key []byte, value []byte) bool {
			exported.Balances = append(exported.Balances, types.Balance{
				Holder: types.BytesToAddress(key[len(prefix):]),
				Amount: binary.BigEndian.Uint64(value),
			})
			return false
		})

		prefix = append([]byte{mainPrefix, allowancePrefix}, address.Bytes()...)
		t.immutableTree().IterateRange(prefix, prefixEnd(prefix), true, func(key []byte, value []byte) bool {
			rest := key[len(prefix):]
			exported.Allowances = append(exported.Allowances, types.Allowance{
				Owner:   types.BytesToAddress(rest[:types.AddressLength]),
				Spender: types.BytesToAddress(rest[types.AddressLength:]),
				Amount:  binary.BigEndian.Uint64(value),
			})
			return false
		})

		state.Tokens = append(state.Tokens, exported)

		return false
	})
}

func (t *Tokens) get(address types.Address) *Model {
	t.lock.RLock()
	token, ok := t.list[address]
	t.lock.RUnlock()
	if ok {
		return token
	}

	_, enc := t.immutableTree().Get(infoPath(address))
	if len(enc) == 0 {
		return nil
	}

	token = &Model{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, token); err != nil {
		panic(fmt.Sprintf("failed to decode token at %s: %s", address.String(), err))
	}
	token.address = address
	token.markDirty = t.markDirty

	t.lock.Lock()
	t.list[address] = token
	t.lock.Unlock()

	return token
}

func (t *Tokens) load(path []byte) uint64 {
	_, enc := t.immutableTree().Get(path)
	if len(enc) == 0 {
		return 0
	}
	return binary.BigEndian.Uint64(enc)
}

func (t *Tokens) markDirty(address types.Address) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.dirty[address] = struct{}{}
}

func (t *Tokens) getOrderedDirty() []types.Address {
	keys := make([]types.Address, 0, len(t.dirty))
	for k := range t.dirty {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (t *Tokens) getOrderedDirtyBalances() []balanceKey {
	keys := make([]balanceKey, 0, len(t.dirtyBalances))
	for k := range t.dirtyBalances {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].path(), keys[j].path()) == 1
	})

	return keys
}

func (t *Tokens) getOrderedDirtyAllowances() []allowanceKey {
	keys := make([]allowanceKey, 0, len(t.dirtyAllowances))
	for k := range t.dirtyAllowances {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].path(), keys[j].path()) == 1
	})

	return keys
}

func setOrRemove(db *iavl.MutableTree, path []byte, value uint64) {
	if value == 0 {
		db.Remove(path)
		return
	}

	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, value)
	db.Set(path, data)
}

func infoPath(address types.Address) []byte {
	return append([]byte{mainPrefix, infoPrefix}, address.Bytes()...)
}

func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
