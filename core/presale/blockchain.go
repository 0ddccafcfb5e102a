package presale

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MinterTeam/minter-presale/cmd/utils"
	"github.com/MinterTeam/minter-presale/config"
	"github.com/MinterTeam/minter-presale/core/appdb"
	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/query"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/statistics"
	"github.com/MinterTeam/minter-presale/core/transaction"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	"github.com/MinterTeam/minter-presale/version"
	"github.com/pkg/errors"
	abcTypes "github.com/tendermint/tendermint/abci/types"
	tmlog "github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/pubsub"
	tmquery "github.com/tendermint/tendermint/libs/pubsub/query"
)

// Keys of the pubsub events attached to every committed call
const (
	EventTypeKey   = "presale.event"
	EventTypeCall  = "Call"
	EventHashKey   = "presale.hash"
	EventHeightKey = "presale.height"
)

const subscriptionCapacity = 100

var ErrNotInitialized = errors.New("state is not initialized, genesis is required")

// Blockchain runs signed calls against the presale state. Every call is committed
// together with the instructions it emits as one state version.
type Blockchain struct {
	logger tmlog.Logger

	executor      *transaction.Executor
	statisticData *statistics.Data

	appDB        *appdb.AppDB
	eventsDB     eventsdb.IEventsDB
	eventBus     *pubsub.Server
	stateDeliver *state.State
	stateCheck   *state.CheckState
	height       uint64

	cfg      *config.Config
	storages *utils.Storage
	clock    func() time.Time

	lock sync.RWMutex
}

// NewBlockchain creates the presale Blockchain instance, should be only called once
func NewBlockchain(storages *utils.Storage, appDB *appdb.AppDB, cfg *config.Config, logger tmlog.Logger) (*Blockchain, error) {
	var eventsDB eventsdb.IEventsDB
	if cfg.EventsEnabled {
		eventsDB = eventsdb.NewEventsStore(storages.EventDB())
	} else {
		eventsDB = eventsdb.NewDisabledEventsStore()
	}

	if logger == nil {
		logger = tmlog.NewNopLogger()
	}

	eventBus := pubsub.NewServer()
	eventBus.SetLogger(logger.With("module", "pubsub"))
	if err := eventBus.Start(); err != nil {
		return nil, errors.Wrap(err, "start event bus")
	}

	app := &Blockchain{
		logger:   logger.With("module", "presale"),
		executor: transaction.NewExecutor(transaction.GetData),
		appDB:    appDB,
		eventsDB: eventsDB,
		eventBus: eventBus,
		cfg:      cfg,
		storages: storages,
		clock:    time.Now,
	}

	if appDB.GetLastHeight() != 0 {
		if err := app.initState(); err != nil {
			return nil, err
		}
	}

	return app, nil
}

func (app *Blockchain) initState() error {
	stateDeliver, err := app.loadState()
	if err != nil {
		return err
	}

	app.setState(stateDeliver)

	return nil
}

func (app *Blockchain) loadState() (*state.State, error) {
	initialHeight := app.appDB.GetStartHeight()
	currentHeight := app.appDB.GetLastHeight()

	stateDeliver, err := state.NewState(currentHeight,
		app.storages.StateDB(),
		app.eventsDB,
		app.cfg.StateCacheSize,
		app.cfg.KeepLastStates,
		initialHeight)
	if err != nil {
		return nil, errors.Wrapf(err, "load state at height %d", currentHeight)
	}
	stateDeliver.SetLogger(app.logger.With("module", "state"))

	return stateDeliver, nil
}

func (app *Blockchain) setState(stateDeliver *state.State) {
	app.lock.Lock()
	app.stateDeliver = stateDeliver
	app.stateCheck = state.NewCheckState(stateDeliver)
	app.lock.Unlock()

	atomic.StoreUint64(&app.height, uint64(stateDeliver.Height()))
}

// SetStatisticData sets the collector of call metrics
func (app *Blockchain) SetStatisticData(statisticData *statistics.Data) *statistics.Data {
	app.statisticData = statisticData
	return app.statisticData
}

// StatisticData returns the collector of call metrics, may be nil
func (app *Blockchain) StatisticData() *statistics.Data {
	return app.statisticData
}

// SetClock replaces the wall clock used as the current time of calls
func (app *Blockchain) SetClock(clock func() time.Time) {
	app.clock = clock
}

// IsInitialized reports whether the genesis state was imported
func (app *Blockchain) IsInitialized() bool {
	return app.CurrentState() != nil
}

// InitChain imports the genesis state as the first version. Only called once.
func (app *Blockchain) InitChain(genesis types.AppState, genesisTime uint64) error {
	if app.IsInitialized() {
		return errors.New("genesis is already imported")
	}

	app.appDB.SetStartHeight(0)
	s, err := app.loadState()
	if err != nil {
		return err
	}

	if err := s.Import(genesis); err != nil {
		return err
	}

	if _, err := app.commit(s, nil, genesisTime); err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	app.appDB.AddVersion(version.Version, app.Height())
	app.appDB.SaveVersions()

	app.setState(s)

	app.logger.Info("Genesis imported", "height", app.Height(), "hash", fmt.Sprintf("%X", app.appDB.GetLastHash()))

	return nil
}

// DeliverTx runs a signed call and the instructions it emits. The call and its
// instructions are committed together as one version, or not at all.
func (app *Blockchain) DeliverTx(rawTx []byte) CallResult {
	s := app.deliverState()
	if s == nil {
		return notInitialized(rawTx)
	}

	s.Lock()
	defer s.Unlock()

	now := app.now()
	callHeight := app.Height() + 1
	app.statisticData.SetStartCall(callHeight, time.Now())

	response := app.executor.RunTx(s, rawTx, now)
	result := newCallResult(rawTx, response)
	txType := app.txType(rawTx)

	if !response.IsOK() {
		s.Discard()
		app.statisticData.SetEndCall(time.Now(), callHeight, txType, response.Code, now)
		return result
	}

	events := append(eventsdb.Events{}, response.Events...)
	queue := append([]transaction.Message{}, response.Messages...)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]

		msgResponse := app.executor.RunMessage(s, msg, now)
		result.Instructions = append(result.Instructions, InstructionResult{
			Sender: msg.Sender,
			Type:   msg.Data.TxType().String(),
			Code:   msgResponse.Code,
			Log:    msgResponse.Log,
		})

		if !msgResponse.IsOK() {
			s.Discard()
			app.instructionFailed(msg, msgResponse)

			result.Code = msgResponse.Code
			result.Log = fmt.Sprintf("instruction %s of %s failed: %s", msg.Data.TxType().String(), msg.Sender.String(), msgResponse.Log)
			result.Info = nil
			if msgResponse.Info != "" && json.Valid([]byte(msgResponse.Info)) {
				result.Info = json.RawMessage(msgResponse.Info)
			}
			result.Tags = nil
			app.statisticData.SetEndCall(time.Now(), callHeight, txType, result.Code, now)
			return result
		}

		events = append(events, msgResponse.Events...)
		queue = append(queue, msgResponse.Messages...)
	}

	height, err := app.commit(s, events, now)
	if err != nil {
		panic(errors.Wrapf(err, "commit call %s", result.Hash))
	}
	result.Height = height

	app.logger.Info("Call committed", "height", height, "type", txType, "hash", result.Hash, "instructions", len(result.Instructions))

	saleConfig := s.Sale.Config()
	app.statisticData.SetSale(saleConfig.PrivateSoldAmount, saleConfig.PublicSoldAmount, s.Sale.ParticipantsCount())
	app.statisticData.SetEndCall(time.Now(), callHeight, txType, response.Code, now)

	app.publish(result)

	return result
}

// CheckTx validates a call against the last committed state without changing it
func (app *Blockchain) CheckTx(rawTx []byte) CallResult {
	cState := app.CurrentState()
	if cState == nil {
		return notInitialized(rawTx)
	}

	cState.RLock()
	defer cState.RUnlock()

	return newCallResult(rawTx, app.executor.RunTx(cState, rawTx, app.now()))
}

// Query runs a read only query at height, 0 means the last committed version
func (app *Blockchain) Query(q *query.Query, height uint64) (interface{}, error) {
	cState, err := app.GetStateForHeight(height)
	if err != nil {
		return nil, err
	}

	cState.RLock()
	defer cState.RUnlock()

	return query.Run(q, cState, app.now())
}

// Events returns events stored at height
func (app *Blockchain) Events(height uint64) eventsdb.Events {
	return app.eventsDB.LoadEvents(height)
}

// Subscribe streams committed calls matching q, an empty q matches everything
func (app *Blockchain) Subscribe(ctx context.Context, subscriber string, q string) (*pubsub.Subscription, error) {
	var parsed pubsub.Query = tmquery.Empty{}
	if q != "" {
		var err error
		parsed, err = tmquery.New(q)
		if err != nil {
			return nil, code.ErrInvalidInput.Wrapf("query: %s", err)
		}
	}

	return app.eventBus.Subscribe(ctx, subscriber, parsed, subscriptionCapacity)
}

// Unsubscribe drops every subscription of subscriber
func (app *Blockchain) Unsubscribe(ctx context.Context, subscriber string) error {
	return app.eventBus.UnsubscribeAll(ctx, subscriber)
}

// Export returns the genesis of the state at height, 0 means the last committed version
func (app *Blockchain) Export(height uint64) (types.AppState, error) {
	cState, err := app.GetStateForHeight(height)
	if err != nil {
		return types.AppState{}, err
	}

	cState.RLock()
	defer cState.RUnlock()

	return cState.Export(), nil
}

// Status returns the last committed height, hash and time
func (app *Blockchain) Status() Status {
	return Status{
		Version:       version.Version,
		AppVersion:    version.AppVer,
		ChainID:       types.CurrentChainID,
		Height:        app.Height(),
		InitialHeight: app.appDB.GetStartHeight(),
		Hash:          app.appDB.GetLastHash(),
		LastTime:      app.appDB.GetLastTime(),
		Initialized:   app.IsInitialized(),
	}
}

// CurrentState returns the read only view of the last committed state, nil before genesis
func (app *Blockchain) CurrentState() *state.CheckState {
	app.lock.RLock()
	defer app.lock.RUnlock()

	return app.stateCheck
}

// GetStateForHeight returns immutable state for given height
func (app *Blockchain) GetStateForHeight(height uint64) (*state.CheckState, error) {
	if height > 0 && height != app.Height() {
		s, err := state.NewCheckStateAtHeight(height, app.storages.StateDB())
		if err != nil {
			return nil, code.ErrInvalidInput.Wrapf("state at height %d: %s", height, err)
		}
		return s, nil
	}

	cState := app.CurrentState()
	if cState == nil {
		return nil, ErrNotInitialized
	}
	return cState, nil
}

// AvailableVersions returns all available versions in ascending order
func (app *Blockchain) AvailableVersions() []int {
	s := app.deliverState()
	if s == nil {
		return nil
	}

	s.RLock()
	defer s.RUnlock()

	return s.Tree().AvailableVersions()
}

// Height returns the last committed version
func (app *Blockchain) Height() uint64 {
	return atomic.LoadUint64(&app.height)
}

// Stop stops the event bus and closes db connections
func (app *Blockchain) Stop() error {
	if err := app.eventBus.Stop(); err != nil {
		app.logger.Error("Failed to stop event bus", "err", err)
	}

	if s := app.deliverState(); s != nil {
		s.Lock()
		defer s.Unlock()
	}

	if err := app.appDB.Close(); err != nil {
		return err
	}
	return app.storages.Close()
}

func (app *Blockchain) deliverState() *state.State {
	app.lock.RLock()
	defer app.lock.RUnlock()

	return app.stateDeliver
}

// commit saves staged changes as a new version together with its events
func (app *Blockchain) commit(s *state.State, events eventsdb.Events, now uint64) (uint64, error) {
	hash, err := s.Commit()
	if err != nil {
		return 0, err
	}

	height := uint64(s.Height())
	for _, event := range events {
		app.eventsDB.AddEvent(height, event)
	}
	if err := app.eventsDB.FlushEvents(); err != nil {
		return 0, errors.Wrapf(err, "flush events at height %d", height)
	}

	app.appDB.SetLastHash(hash)
	app.appDB.SetLastHeight(height)
	app.appDB.SetLastTime(now)

	atomic.StoreUint64(&app.height, height)
	app.statisticData.SetHeight(int64(height))

	return height, nil
}

func (app *Blockchain) instructionFailed(msg transaction.Message, response transaction.Response) {
	app.logger.Info("Instruction failed, call reverted",
		"sender", msg.Sender.String(),
		"type", msg.Data.TxType().String(),
		"code", response.Code,
		"log", response.Log)

	app.statisticData.AddFailedInstruction(msg.Data.TxType().String())
}

func (app *Blockchain) publish(result CallResult) {
	events := map[string][]string{
		EventTypeKey:   {EventTypeCall},
		EventHashKey:   {result.Hash},
		EventHeightKey: {strconv.FormatUint(result.Height, 10)},
	}
	for key, value := range result.Tags {
		events[key] = append(events[key], value)
	}

	if err := app.eventBus.PublishWithEvents(context.Background(), result, events); err != nil {
		app.logger.Error("Failed to publish call", "hash", result.Hash, "err", err)
	}
}

// now is the wall clock, never earlier than the time of the last commit
func (app *Blockchain) now() uint64 {
	now := uint64(app.clock().Unix())
	if last := app.appDB.GetLastTime(); now < last {
		return last
	}
	return now
}

func (app *Blockchain) txType(rawTx []byte) string {
	tx, err := app.executor.DecodeFromBytes(rawTx)
	if err != nil {
		return "unknown"
	}
	return tx.Type.String()
}

func notInitialized(rawTx []byte) CallResult {
	return CallResult{
		Hash: transaction.TxHash(rawTx).String(),
		Code: code.InvalidInput,
		Log:  ErrNotInitialized.Error(),
	}
}

// CallResult is the outcome of a delivered or checked call
type CallResult struct {
	Hash         string              `json:"hash"`
	Height       uint64              `json:"height,string"`
	Code         uint32              `json:"code"`
	Data         []byte              `json:"data,omitempty"`
	Log          string              `json:"log,omitempty"`
	Info         json.RawMessage     `json:"info,omitempty"`
	Tags         map[string]string   `json:"tags,omitempty"`
	Instructions []InstructionResult `json:"instructions,omitempty"`
}

func (r CallResult) IsOK() bool {
	return r.Code == code.OK
}

// InstructionResult is the outcome of an instruction run within its call
type InstructionResult struct {
	Sender types.Address `json:"sender"`
	Type   string        `json:"type"`
	Code   uint32        `json:"code"`
	Log    string        `json:"log,omitempty"`
}

func newCallResult(rawTx []byte, response transaction.Response) CallResult {
	result := CallResult{
		Hash: transaction.TxHash(rawTx).String(),
		Code: response.Code,
		Data: response.Data,
		Log:  response.Log,
		Tags: tagsToMap(response.Tags),
	}
	if response.Info != "" && json.Valid([]byte(response.Info)) {
		result.Info = json.RawMessage(response.Info)
	}
	return result
}

func tagsToMap(tags []abcTypes.EventAttribute) map[string]string {
	if len(tags) == 0 {
		return nil
	}

	result := make(map[string]string, len(tags))
	for _, tag := range tags {
		result[string(tag.Key)] = string(tag.Value)
	}
	return result
}

// Status describes the last committed version
type Status struct {
	Version       string        `json:"version"`
	AppVersion    uint64        `json:"app_version,string"`
	ChainID       types.ChainID `json:"chain_id"`
	Height        uint64        `json:"height,string"`
	InitialHeight uint64        `json:"initial_height,string"`
	Hash          []byte        `json:"hash"`
	LastTime      uint64        `json:"last_time,string"`
	Initialized   bool          `json:"initialized"`
}

// LoadGenesis reads a genesis state from a JSON file
func LoadGenesis(path string) (types.AppState, error) {
	var genesis types.AppState

	content, err := os.ReadFile(path)
	if err != nil {
		return genesis, errors.Wrap(err, "read genesis")
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return genesis, errors.Wrap(err, "decode genesis")
	}

	return genesis, nil
}
