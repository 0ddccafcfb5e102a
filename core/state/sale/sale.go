package sale

import (
	"bytes"
	"encoding/binary"
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
	mainPrefix        = byte('s')
	configPrefix      = byte('c')
	participantPrefix = byte('p')
	userListPrefix    = byte('l')
)

var cdc = amino.NewCodec()

type RSale interface {
	Export(state *types.AppState)
	Config() Model
	GetParticipant(address types.Address) *Participant
	ParticipantsCount() uint64
	Participants(page, limit uint64) []types.Address
}

// Sale keeps the presale configuration and per participant accounting
type Sale struct {
	config      *Model
	dirtyConfig bool

	participants      map[types.Address]*Participant
	dirtyParticipants map[types.Address]struct{}

	users      map[uint64]types.Address
	dirtyUsers map[uint64]struct{}

	db atomic.Value

	lock sync.RWMutex
}

func NewSale(db *iavl.ImmutableTree) *Sale {
	immutableTree := atomic.Value{}
	if db != nil {
		immutableTree.Store(db)
	}
	sale := &Sale{db: immutableTree}
	sale.reset()

	return sale
}

func (s *Sale) reset() {
	s.config = nil
	s.dirtyConfig = false
	s.participants = map[types.Address]*Participant{}
	s.dirtyParticipants = map[types.Address]struct{}{}
	s.users = map[uint64]types.Address{}
	s.dirtyUsers = map[uint64]struct{}{}
}

func (s *Sale) immutableTree() *iavl.ImmutableTree {
	db := s.db.Load()
	if db == nil {
		return nil
	}
	return db.(*iavl.ImmutableTree)
}

func (s *Sale) SetImmutableTree(immutableTree *iavl.ImmutableTree) {
	s.db.Store(immutableTree)
}

func (s *Sale) Commit(db *iavl.MutableTree) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.dirtyConfig {
		s.dirtyConfig = false
		data, err := cdc.MarshalBinaryLengthPrefixed(s.config)
		if err != nil {
			return fmt.Errorf("can't encode sale config: %v", err)
		}
		db.Set([]byte{mainPrefix, configPrefix}, data)
	}

	for _, address := range s.getOrderedDirtyParticipants() {
		delete(s.dirtyParticipants, address)

		data, err := cdc.MarshalBinaryLengthPrefixed(s.participants[address])
		if err != nil {
			return fmt.Errorf("can't encode object at %s: %v", address.String(), err)
		}
		db.Set(participantPath(address), data)
	}

	for _, index := range s.getOrderedDirtyUsers() {
		delete(s.dirtyUsers, index)
		db.Set(userPath(index), s.users[index].Bytes())
	}

	return nil
}

// Discard drops every change made after the last commit
func (s *Sale) Discard() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.reset()
}

// Config returns a copy of the current configuration
func (s *Sale) Config() Model {
	config := s.getConfig()

	s.lock.RLock()
	defer s.lock.RUnlock()

	return *config
}

func (s *Sale) SetConfig(model Model) {
	config := s.getConfig()

	s.lock.Lock()
	defer s.lock.Unlock()

	count := config.Count
	*config = model
	config.Count = count
	s.dirtyConfig = true
}

func (s *Sale) SetOwner(owner types.Address) {
	s.update(func(config *Model) {
		config.Owner = owner
	})
}

func (s *Sale) SetMerkleRoot(root string) {
	s.update(func(config *Model) {
		config.MerkleRoot = root
	})
}

func (s *Sale) SetPresaleInfo(privateStartTime, publicStartTime, presalePeriod uint64) {
	s.update(func(config *Model) {
		config.PrivateStartTime = privateStartTime
		config.PublicStartTime = publicStartTime
		config.PresalePeriod = presalePeriod
	})
}

func (s *Sale) SetSoldAmounts(privateSold, publicSold uint64) {
	s.update(func(config *Model) {
		config.PrivateSoldAmount = privateSold
		config.PublicSoldAmount = publicSold
	})
}

// GetParticipant returns nil if the address never deposited
func (s *Sale) GetParticipant(address types.Address) *Participant {
	s.lock.RLock()
	participant, ok := s.participants[address]
	s.lock.RUnlock()
	if ok {
		return participant
	}

	_, enc := s.immutableTree().Get(participantPath(address))
	if len(enc) == 0 {
		return nil
	}

	participant = &Participant{}
	if err := cdc.UnmarshalBinaryLengthPrefixed(enc, participant); err != nil {
		panic(fmt.Sprintf("failed to decode participant at %s: %s", address.String(), err))
	}
	participant.address = address

	s.lock.Lock()
	s.participants[address] = participant
	s.lock.Unlock()

	return participant
}

// SetParticipant stores balances of the participant, appending it to the list on first write
func (s *Sale) SetParticipant(address types.Address, fundBalance, rewardBalance, privateSoldFund uint64) {
	participant := s.GetParticipant(address)
	if participant == nil {
		config := s.getConfig()

		s.lock.Lock()
		participant = &Participant{address: address}
		s.participants[address] = participant
		s.users[config.Count] = address
		s.dirtyUsers[config.Count] = struct{}{}
		config.Count++
		s.dirtyConfig = true
		s.lock.Unlock()
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	participant.FundBalance = fundBalance
	participant.RewardBalance = rewardBalance
	participant.PrivateSoldFund = privateSoldFund
	s.dirtyParticipants[address] = struct{}{}
}

func (s *Sale) ParticipantsCount() uint64 {
	return s.Config().Count
}

// Participants returns addresses of the page in order of the first deposit
func (s *Sale) Participants(page, limit uint64) []types.Address {
	start, end := helpers.PageBounds(page, limit, s.ParticipantsCount())

	addresses := make([]types.Address, 0, end-start)
	for i := start; i < end; i++ {
		addresses = append(addresses, s.userAt(i))
	}

	return addresses
}

func (s *Sale) Export(state *types.AppState) {
	config := s.Config()
	state.Sale = types.Sale{
		Contract:           config.Contract,
		Owner:              config.Owner,
		FundToken:          config.FundToken,
		RewardToken:        config.RewardToken,
		Vesting:            config.Vesting,
		MerkleRoot:         config.MerkleRoot,
		UseRegistry:        config.UseRegistry,
		ExchangeRate:       config.ExchangeRate,
		PrivateStartTime:   config.PrivateStartTime,
		PublicStartTime:    config.PublicStartTime,
		PresalePeriod:      config.PresalePeriod,
		DistributionAmount: config.DistributionAmount,
		PrivateSoldAmount:  config.PrivateSoldAmount,
		PublicSoldAmount:   config.PublicSoldAmount,
	}

	for i := uint64(0); i < config.Count; i++ {
		address := s.userAt(i)
		participant := s.GetParticipant(address)
		state.Sale.Participants = append(state.Sale.Participants, types.Participant{
			Address:         address,
			FundBalance:     participant.FundBalance,
			RewardBalance:   participant.RewardBalance,
			PrivateSoldFund: participant.PrivateSoldFund,
		})
	}
}

func (s *Sale) update(fn func(config *Model)) {
	config := s.getConfig()

	s.lock.Lock()
	defer s.lock.Unlock()

	fn(config)
	s.dirtyConfig = true
}

func (s *Sale) getConfig() *Model {
	s.lock.RLock()
	config := s.config
	s.lock.RUnlock()
	if config != nil {
		return config
	}

	config = &Model{}
	_, enc := s.immutableTree().Get([]byte{mainPrefix, configPrefix})
	if len(enc) != 0 {
		if err := cdc.UnmarshalBinaryLengthPrefixed(enc, config); err != nil {
			panic(fmt.Sprintf("failed to decode sale config: %s", err))
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.config == nil {
		s.config = config
	}

	return s.config
}

func (s *Sale) userAt(index uint64) types.Address {
	s.lock.RLock()
	address, ok := s.users[index]
	s.lock.RUnlock()
	if ok {
		return address
	}

	_, enc := s.immutableTree().Get(userPath(index))
	address = types.BytesToAddress(enc)

	s.lock.Lock()
	s.users[index] = address
	s.lock.Unlock()

	return address
}

func (s *Sale) getOrderedDirtyParticipants() []types.Address {
	keys := make([]types.Address, 0, len(s.dirtyParticipants))
	for k := range s.dirtyParticipants {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) == 1
	})

	return keys
}

func (s *Sale) getOrderedDirtyUsers() []uint64 {
	keys := make([]uint64, 0, len(s.dirtyUsers))
	for k := range s.dirtyUsers {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	return keys
}

func participantPath(address types.Address) []byte {
	return append([]byte{mainPrefix, participantPrefix}, address.Bytes()...)
}

func userPath(index uint64) []byte {
	path := make([]byte, 2+8)
	path[0], path[1] = mainPrefix, userListPrefix
	binary.BigEndian.PutUint64(path[2:], index)
	return path
}
