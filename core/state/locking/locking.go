package locking

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/helpers"
	"github.com/cosmos/iavl"
	"github.com/tendermint/go-amino"
)

const (
	mainPrefix   = byte('l')
	configPrefix = byte('c')
	infoPrefix   = byte('i')
)

// Limits of LockedAccounts
const (
	DefaultLimit = 10
	MaxLimit     = 30
)

var cdc = amino.NewCodec()

type RLocking interface {
	Export(state *types.AppState)
	Config() Model
	GetInfo(address types.Address) *Info
	LockedAccounts(startAfter *types.Address, limit uint64, descending bool) []*Info
}

// Locking keeps balances locked under the time decaying penalty
type Locking struct {
	config      *Model
	dirtyConfig bool

	list  map[types.Address]*Info
	dirty map[types.Address]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewLocking(db *iavl.ImmutableTree) *Locking {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	locking := &Locking{db: immutableTree}
	locking.reset()

	return locking
}

func (l *Locking) reset() {
	l.config = nil
	l.dirtyConfig = false
	l.list = map[types.Address]*Info{}
	l.dirty = map[types.Address]struct{}{}
}

func (l *Locking) immutableTree() *iavl.ImmutableTree {
	db := l.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (l *Locking) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	l.db.Store(immutableTree)
}

func (l *Locking) Commit(db *iavl.MutableTree) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.dirtyConfig {
		l.dirtyConfig = false
		data, err := cdc.MarshalBinaryLengthPrefixed(l.config)
		if err != nil {
			return fmt.Errorf("can't encode locking config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	for _, address := range l.getOrderedDirty() {
		delete(l.dirty, address)

		data, err := cdc.MarshalBinaryLengthPrefixed(l.list[address])
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}
		db.Set(infoPath(address), data)
	}

	return nil
}

// Discard drops every change made after the last commit
func (l *Locking) Discard() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.reset()
}

func (l *Locking) Config() Model {
	config := l.getConfig()

	l.lock.RLock()
	defer l.lock.RUnlock()

	return *config
}

func (l *Locking) SetConfig(model Model) {
	l.update(func(config *Model) {
		*config = model
	})
}

// UpdateConfig changes only non zero fields
func (l *Locking) UpdateConfig(owner types.Address, token types.Address, penaltyPeriod uint64, dead types.Address) {
	l.update(func(config *Model) {
		if !owner.IsZero() {
			config.Owner = owner
		}
		if !token.IsZero() {
			config.Token = token
		}
		if penaltyPeriod != 0 {
			config.PenaltyPeriod = penaltyPeriod
		}
		if !dead.IsZero() {
			config.Dead = dead
		}
	})
}

// GetInfo returns nil if the address never locked
func (l *Locking) GetInfo(address types.Address) *Info {
	l.lock.RLock()
	info, ok := l.list[address]
	l.lock.RUnlock()
	if ok {
		return info
	}

	_, enc := l.immutableTree().Get(infoPath(address))
	if len(enc) == 0 {
		return nil
	}

	info = &Info{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, info); err != nil {
		panic(fmt.Sprintf("failed to decode lock info at %s: %s", address.String(), err))
	}
	info.address = address

	l.lock.Lock()
	l.list[address] = info
	l.lock.Unlock()

	return info
}

// SetInfo overwrites the locked record of the address
func (l *Locking) SetInfo(address types.Address, amount uint64, lastLockedTime uint64) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.list[address] = &Info{Amount: amount, LastLockedTime: lastLockedTime, address: address}
	l.dirty[address] = struct{}{}
}

func (l *Locking) SetAmount(address types.Address, amount uint64) {
	info := l.GetInfo(address)
	if info == nil {
		panic(fmt.Sprintf("lock info of %s not found", address.String()))
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	info.Amount = amount
	l.dirty[address] = struct{}{}
}

// LockedAccounts pages through committed records by address.
// startAfter is exclusive, limit is clamped to [1, MaxLimit] with DefaultLimit for zero.
func (l *Locking) LockedAccounts(startAfter *types.Address, limit uint64, descending bool) []*Info {
	limit = helpers.ClampLimit(limit, DefaultLimit, MaxLimit)

	start := []byte{mainPrefix, infoPrefix}
	end := []byte{mainPrefix, infoPrefix + 1}
	if startAfter != nil {
		if descending {
			end = infoPath(*startAfter)
		} else {
			start = append(infoPath(*startAfter), 0)
		}
	}

	var result []*Info
	l.immutableTree().IterateRange(start, end, !descending, func(key []byte, value []byte) bool {
		info := &Info{address: types.BytesToAddress(key[2:])}
		if err := cdc.UnmarshalBinaryLengthPrefixed(value, info); err != nil {
			panic(fmt.Sprintf("failed to decode lock info at %s: %s", info.address.String(), err))
		}
		result = append(result, info)
		return uint64(len(result)) >= limit
	})

	return result
}

func (l *Locking) Export(state *types.AppState) {
	config := l.Config()
	state.Locking = types.Locking{
		Contract:      config.Contract,
		Owner:         config.Owner,
		Token:         config.Token,
		PenaltyPeriod: config.PenaltyPeriod,
		Dead:          config.Dead,
	}

	l.immutableTree().IterateRange([]byte{mainPrefix, infoPrefix}, []byte{mainPrefix, infoPrefix + 1}, true, func(key []byte, value []byte) bool {
		info := l.GetInfo(types.BytesToAddress(key[2:]))
		state.Locking.Locks = append(state.Locking.Locks, types.Lock{
			Address:        info.Address(),
			Amount:         info.Amount,
			LastLockedTime: info.LastLockedTime,
		})
		return false
	})
}

func (l *Locking) update(fn func(config *Model)) {
	config := l.getConfig()

	l.lock.Lock()
	defer l.lock.Unlock()

	fn(config)
	l.dirtyConfig = true
}

func (l *Locking) getConfig() *Model {
	l.lock.RLock()
	config := l.config
	l.lock.RUnlock()
	if config != nil {
		return config
	}

	config = &Model{}
	_, enc := l.immutableTree().Get([]byte{mainPrefix, configPrefix})
	if len(enc) != 0 {
		if err := cdc.UnmarshalBinaryLengthPrefixed(enc, config); err != nil {
			panic(fmt.Sprintf("failed to decode locking config: %s", err))
		}
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	if l.config == nil {
		l.config = config
	}

	return l.config
}

func (l *Locking) getOrderedDirty() []types.Address {
	keys := make([]types.Address, 0, len(l.dirty))
	for k := range l.dirty {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func infoPath(address types.Address) []byte {
	return append([]byte{mainPrefix, infoPrefix}, address.Bytes()...)
}
