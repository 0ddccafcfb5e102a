package state

import (
	"sync"

	"github.com/MinterTeam/minter-presale/core/state/accounts"
	"github.com/MinterTeam/minter-presale/core/state/bus"
	"github.com/MinterTeam/minter-presale/core/state/locking"
	"github.com/MinterTeam/minter-presale/core/state/sale"
	"github.com/MinterTeam/minter-presale/core/state/tokens"
	"github.com/MinterTeam/minter-presale/core/state/vesting"
	"github.com/MinterTeam/minter-presale/core/state/whitelist"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	"github.com/MinterTeam/minter-presale/tree"
	"github.com/cosmos/iavl"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
)

type Interface interface {
	isValue_State()
}

// CheckState is the read-only view of the state used by queries and dry runs
type CheckState struct {
	state *State
}

func NewCheckState(state *State) *CheckState {
	return &CheckState{state: state}
}

func (cs *CheckState) isValue_State() {}

func (cs *CheckState) Lock() {
	cs.state.lock.Lock()
}

func (cs *CheckState) Unlock() {
	cs.state.lock.Unlock()
}

func (cs *CheckState) RLock() {
	cs.state.lock.RLock()
}

func (cs *CheckState) RUnlock() {
	cs.state.lock.RUnlock()
}

func (cs *CheckState) Export() types.AppState {
	appState := new(types.AppState)
	cs.Accounts().Export(appState)
	cs.Tokens().Export(appState)
	cs.Sale().Export(appState)
	cs.Whitelist().Export(appState)
	cs.Vesting().Export(appState)
	cs.Locking().Export(appState)

	return *appState
}

func (cs *CheckState) Height() int64 {
	return cs.state.height
}

// Bus gives access to the cross module interfaces: token info and registry allocations
func (cs *CheckState) Bus() *bus.Bus {
	return cs.state.bus
}

func (cs *CheckState) Accounts() accounts.RAccounts {
	return cs.state.Accounts
}

func (cs *CheckState) Tokens() tokens.RTokens {
	return cs.state.Tokens
}

func (cs *CheckState) Sale() sale.RSale {
	return cs.state.Sale
}

func (cs *CheckState) Whitelist() whitelist.RWhitelist {
	return cs.state.Whitelist
}

func (cs *CheckState) Vesting() vesting.RVesting {
	return cs.state.Vesting
}

func (cs *CheckState) Locking() locking.RLocking {
	return cs.state.Locking
}

type State struct {
	Accounts  *accounts.Accounts
	Tokens    *tokens.Tokens
	Sale      *sale.Sale
	Whitelist *whitelist.Whitelist
	Vesting   *vesting.Vesting
	Locking   *locking.Locking

	db             db.DB
	events         eventsdb.IEventsDB
	tree           tree.MTree
	keepLastStates int64
	logger         log.Logger

	bus            *bus.Bus
	lock           sync.RWMutex
	height         int64
	initialVersion int64
}

func (s *State) isValue_State() {}

func NewState(height uint64, db db.DB, events eventsdb.IEventsDB, cacheSize int, keepLastStates int64, initialVersion uint64) (*State, error) {
	iavlTree, err := tree.NewMutableTree(height, db, cacheSize, initialVersion)
	if err != nil {
		return nil, err
	}

	state := newStateForTree(iavlTree.GetLastImmutable(), events, db, keepLastStates)
	state.tree = iavlTree
	state.height = int64(height)
	state.initialVersion = int64(initialVersion)

	return state, nil
}

func NewCheckStateAtHeight(height uint64, db db.DB) (*CheckState, error) {
	iavlTree, err := tree.NewImmutableTree(height, db)
	if err != nil {
		return nil, err
	}

	return NewCheckState(newStateForTree(iavlTree, nil, db, 0)), nil
}

func (s *State) SetLogger(logger log.Logger) {
	s.logger = logger
}

func (s *State) Tree() tree.MTree {
	return s.tree
}

func (s *State) Bus() *bus.Bus {
	return s.bus
}

func (s *State) Height() int64 {
	return s.height
}

func (s *State) Lock() {
	s.lock.Lock()
}

func (s *State) Unlock() {
	s.lock.Unlock()
}

func (s *State) RLock() {
	s.lock.RLock()
}

func (s *State) RUnlock() {
	s.lock.RUnlock()
}

// Commit saves staged changes as a new version and prunes versions older than keepLastStates.
// On error the caller should Discard.
func (s *State) Commit() ([]byte, error) {
	hash, version, err := s.tree.Commit(
		s.Accounts,
		s.Tokens,
		s.Sale,
		s.Whitelist,
		s.Vesting,
		s.Locking,
	)
	if err != nil {
		return hash, err
	}

	s.height = version

	versionToDelete := version - s.keepLastStates - 1
	if versionToDelete < s.initialVersion || versionToDelete <= 0 {
		return hash, nil
	}

	if err := s.tree.DeleteVersion(versionToDelete); err != nil {
		s.logger.Error("DeleteVersion failed", "version", versionToDelete, "err", err)
	}

	return hash, nil
}

// Discard drops staged changes of every module and of the working tree
func (s *State) Discard() {
	s.Accounts.Discard()
	s.Tokens.Discard()
	s.Sale.Discard()
	s.Whitelist.Discard()
	s.Vesting.Discard()
	s.Locking.Discard()
	s.tree.Rollback()
}

func (s *State) Import(state types.AppState) error {
	if err := state.Verify(); err != nil {
		return errors.Wrap(err, "invalid genesis state")
	}

	for _, a := range state.Accounts {
		s.Accounts.SetNonce(a.Address, a.Nonce)
	}

	for _, t := range state.Tokens {
		s.Tokens.Create(t.Address, t.Name, t.Symbol, t.Decimals, t.TotalSupply)
		for _, b := range t.Balances {
			s.Tokens.SetBalance(t.Address, b.Holder, b.Amount)
		}
		for _, a := range t.Allowances {
			s.Tokens.SetAllowance(t.Address, a.Owner, a.Spender, a.Amount)
		}
	}

	s.Sale.SetConfig(sale.Model{
		Contract:           state.Sale.Contract,
		Owner:              state.Sale.Owner,
		FundToken:          state.Sale.FundToken,
		RewardToken:        state.Sale.RewardToken,
		Vesting:            state.Sale.Vesting,
		MerkleRoot:         state.Sale.MerkleRoot,
		UseRegistry:        state.Sale.UseRegistry,
		ExchangeRate:       state.Sale.ExchangeRate,
		PrivateStartTime:   state.Sale.PrivateStartTime,
		PublicStartTime:    state.Sale.PublicStartTime,
		PresalePeriod:      state.Sale.PresalePeriod,
		DistributionAmount: state.Sale.DistributionAmount,
		PrivateSoldAmount:  state.Sale.PrivateSoldAmount,
		PublicSoldAmount:   state.Sale.PublicSoldAmount,
	})
	for _, p := range state.Sale.Participants {
		s.Sale.SetParticipant(p.Address, p.FundBalance, p.RewardBalance, p.PrivateSoldFund)
	}

	s.Whitelist.SetConfig(state.Whitelist.Contract, state.Whitelist.Owner)
	for _, u := range state.Whitelist.Users {
		s.Whitelist.Upsert(u.Wallet, u.PublicAllocation, u.PrivateAllocation)
	}

	s.Vesting.SetConfig(vesting.Model{
		Contract:        state.Vesting.Contract,
		Owner:           state.Vesting.Owner,
		Operator:        state.Vesting.Operator,
		RewardToken:     state.Vesting.RewardToken,
		StartTime:       state.Vesting.StartTime,
		LockPeriod:      state.Vesting.LockPeriod,
		ReleaseInterval: state.Vesting.ReleaseInterval,
		ReleaseRate:     state.Vesting.ReleaseRate,
		InitialUnlock:   state.Vesting.InitialUnlock,
		VestingPeriod:   state.Vesting.VestingPeriod,
	})
	for _, r := range state.Vesting.Recipients {
		s.Vesting.SetRecipient(r.Address, r.Amount)
		s.Vesting.SetWithdrawn(r.Address, r.Withdrawn)
	}

	s.Locking.SetConfig(locking.Model{
		Contract:      state.Locking.Contract,
		Owner:         state.Locking.Owner,
		Token:         state.Locking.Token,
		PenaltyPeriod: state.Locking.PenaltyPeriod,
		Dead:          state.Locking.Dead,
	})
	for _, l := range state.Locking.Locks {
		s.Locking.SetInfo(l.Address, l.Amount, l.LastLockedTime)
	}

	return nil
}

// Export returns the state of the last committed version
func (s *State) Export() (types.AppState, error) {
	state, err := NewCheckStateAtHeight(uint64(s.tree.Version()), s.db)
	if err != nil {
		return types.AppState{}, errors.Wrapf(err, "create state at height %d", s.tree.Version())
	}

	return state.Export(), nil
}

func newStateForTree(immutableTree *iavl.ImmutableTree, events eventsdb.IEventsDB, db db.DB, keepLastStates int64) *State {
	stateBus := bus.NewBus()
	stateBus.SetEvents(events)

	return &State{
		Accounts:  accounts.NewAccounts(immutableTree),
		Tokens:    tokens.NewTokens(stateBus, immutableTree),
		Sale:      sale.NewSale(immutableTree),
		Whitelist: whitelist.NewWhitelist(stateBus, immutableTree),
		Vesting:   vesting.NewVesting(immutableTree),
		Locking:   locking.NewLocking(immutableTree),

		height:         immutableTree.Version(),
		bus:            stateBus,
		db:             db,
		events:         events,
		keepLastStates: keepLastStates,
		logger:         log.NewNopLogger(),
	}
}
