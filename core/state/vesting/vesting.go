package vesting

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/formula"
	"github.com/cosmos/iavl"
	"github.com/tendermint/go-amino"
)

const (
	mainPrefix      = byte('v')
	configPrefix    = byte('c')
	recipientPrefix = byte('r')
)

var cdc = amino.NewCodec()

type RVesting interface {
	Export(state *types.AppState)
	Config() Model
	GetRecipient(address types.Address) *Recipient
	Vested(address types.Address, now uint64) uint64
	Withdrawable(address types.Address, now uint64) uint64
}

// Vesting is the release ledger of reward entitlements
type Vesting struct {
	config      *Model
	dirtyConfig bool

	recipients map[types.Address]*Recipient
	dirty      map[types.Address]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewVesting(db *iavl.ImmutableTree) *Vesting {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	vesting := &Vesting{db: immutableTree}
	vesting.reset()

	return vesting
}

func (v *Vesting) reset() {
	v.config = nil
	v.dirtyConfig = false
	v.recipients = map[types.Address]*Recipient{}
	v.dirty = map[types.Address]struct{}{}
}

func (v *Vesting) immutableTree() *iavl.ImmutableTree {
	db := v.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (v *Vesting) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	v.db.Store(immutableTree)
}

func (v *Vesting) Commit(db *iavl.MutableTree) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.dirtyConfig {
		v.dirtyConfig = false
		data, err := cdc.MarshalBinaryLengthPrefixed(v.config)
		if err != nil {
			return fmt.Errorf("can't encode vesting config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	for _, address := range v.getOrderedDirty() {
		delete(v.dirty, address)

		data, err := cdc.MarshalBinaryLengthPrefixed(v.recipients[address])
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}
		db.Set(recipientPath(address), data)
	}

	return nil
}

// Discard drops every change made after the last commit
func (v *Vesting) Discard() {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.reset()
}

func (v *Vesting) Config() Model {
	config := v.getConfig()

	v.lock.RLock()
	defer v.lock.RUnlock()

	return *config
}

func (v *Vesting) SetConfig(model Model) {
	v.update(func(config *Model) {
		*config = model
	})
}

func (v *Vesting) SetOwner(owner types.Address) {
	v.update(func(config *Model) {
		config.Owner = owner
	})
}

func (v *Vesting) SetStartTime(startTime uint64) {
	v.update(func(config *Model) {
		config.StartTime = startTime
	})
}

// GetRecipient returns nil for addresses without entitlement
func (v *Vesting) GetRecipient(address types.Address) *Recipient {
	v.lock.RLock()
	recipient, ok := v.recipients[address]
	v.lock.RUnlock()
	if ok {
		return recipient
	}

	_, enc := v.immutableTree().Get(recipientPath(address))
	if len(enc) == 0 {
		return nil
	}

	recipient = &Recipient{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, recipient); err != nil {
		panic(fmt.Sprintf("failed to decode recipient at %s: %s", address.String(), err))
	}
	recipient.address = address

	v.lock.Lock()
	v.recipients[address] = recipient
	v.lock.Unlock()

	return recipient
}

func (v *Vesting) getOrNew(address types.Address) *Recipient {
	recipient := v.GetRecipient(address)
	if recipient != nil {
		return recipient
	}

	recipient = &Recipient{address: address}

	v.lock.Lock()
	v.recipients[address] = recipient
	v.lock.Unlock()

	return recipient
}

// SetRecipient overwrites the total entitlement, withdrawn amount is kept
func (v *Vesting) SetRecipient(address types.Address, amount uint64) {
	recipient := v.getOrNew(address)

	v.lock.Lock()
	defer v.lock.Unlock()

	recipient.Amount = amount
	v.dirty[address] = struct{}{}
}

func (v *Vesting) SetWithdrawn(address types.Address, withdrawn uint64) {
	recipient := v.getOrNew(address)

	v.lock.Lock()
	defer v.lock.Unlock()

	recipient.Withdrawn = withdrawn
	v.dirty[address] = struct{}{}
}

func (v *Vesting) Vested(address types.Address, now uint64) uint64 {
	recipient := v.GetRecipient(address)
	if recipient == nil {
		return 0
	}

	return formula.CalculateVested(recipient.Amount, v.Config().Schedule(), now)
}

func (v *Vesting) Withdrawable(address types.Address, now uint64) uint64 {
	recipient := v.GetRecipient(address)
	if recipient == nil {
		return 0
	}

	return formula.CalculateWithdrawable(recipient.Amount, recipient.Withdrawn, v.Config().Schedule(), now)
}

func (v *Vesting) Export(state *types.AppState) {
	config := v.Config()
	state.Vesting = types.Vesting{
		Contract:        config.Contract,
		Owner:           config.Owner,
		Operator:        config.Operator,
		RewardToken:     config.RewardToken,
		StartTime:       config.StartTime,
		LockPeriod:      config.LockPeriod,
		ReleaseInterval: config.ReleaseInterval,
		ReleaseRate:     config.ReleaseRate,
		InitialUnlock:   config.InitialUnlock,
		VestingPeriod:   config.VestingPeriod,
	}

	v.immutableTree().IterateRange([]byte{mainPrefix, recipientPrefix}, []byte{mainPrefix, recipientPrefix + 1}, true, func(key []byte, value []byte) bool {
		recipient := v.GetRecipient(types.BytesToAddress(key[2:]))
		state.Vesting.Recipients = append(state.Vesting.Recipients, types.Recipient{
			Address:   recipient.Address(),
			Amount:    recipient.Amount,
			Withdrawn: recipient.Withdrawn,
		})
		return false
	})
}

func (v *Vesting) update(fn func(config *Model)) {
	config := v.getConfig()

	v.lock.Lock()
	defer v.lock.Unlock()

	fn(config)
	v.dirtyConfig = true
}

func (v *Vesting) getConfig() *Model {
	v.lock.RLock()
	config := v.config
	v.lock.RUnlock()
	if config != nil {
		return config
	}

	config = &Model{}
	_, enc := v.immutableTree().Get([]byte{mainPrefix, configPrefix})
	if len(enc) != 0 {
		if err := cdc.UnmarshalBinaryLengthPrefixed(enc, config); err != nil {
			panic(fmt.Sprintf("failed to decode vesting config: %s", err))
		}
	}

	v.lock.Lock()
	defer v.lock.Unlock()
	if v.config == nil {
		v.config = config
	}

	return v.config
}

func (v *Vesting) getOrderedDirty() []types.Address {
	keys := make([]types.Address, 0, len(v.dirty))
	for k := range v.dirty {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func recipientPath(address types.Address) []byte {
	return append([]byte{mainPrefix, recipientPrefix}, address.Bytes()...)
}
