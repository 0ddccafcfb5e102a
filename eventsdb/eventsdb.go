package eventsdb

import (
	"encoding/binary"
	"sync"

	"github.com/tendermint/go-amino"
	db "github.com/tendermint/tm-db"
)

var cdc = amino.NewCodec()

func init() {
	RegisterAminoEvents(cdc)
}

type IEventsDB interface {
	AddEvent(height uint64, event Event)
	LoadEvents(height uint64) Events
	FlushEvents() error
	Clear()
}

type eventsStore struct {
	db      db.DB
	cache   *eventsCache
	enabled bool

	lock sync.RWMutex
}

type eventsCache struct {
	height uint64
	events Events

	lock sync.RWMutex
}

func (c *eventsCache) set(height uint64, events Events) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.height, c.events = height, events
}

func (c *eventsCache) get() (uint64, Events) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.height, c.events
}

func (c *eventsCache) clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.height = 0
	c.events = nil
}

// NewEventsStore creates new events store in given DB
func NewEventsStore(db db.DB) IEventsDB {
	return &eventsStore{
		db:      db,
		enabled: true,
		cache:   &eventsCache{},
	}
}

// NewDisabledEventsStore returns store which drops every event
func NewDisabledEventsStore() IEventsDB {
	return &eventsStore{
		cache: &eventsCache{},
	}
}

func (store *eventsStore) AddEvent(height uint64, event Event) {
	if !store.enabled {
		return
	}

	events := store.getEvents(height)
	store.cache.set(height, append(events, event))
}

// FlushEvents writes cached events of the last height to the disk
func (store *eventsStore) FlushEvents() error {
	if !store.enabled {
		return nil
	}

	height, events := store.cache.get()
	if len(events) == 0 {
		return nil
	}

	bytes, err := cdc.MarshalBinaryBare(events)
	if err != nil {
		return err
	}

	store.lock.Lock()
	defer store.lock.Unlock()

	if err := store.db.Set(getKeyForHeight(height), bytes); err != nil {
		return err
	}
	store.cache.clear()

	return nil
}

// Clear drops cached and not flushed events
func (store *eventsStore) Clear() {
	store.cache.clear()
}

func (store *eventsStore) LoadEvents(height uint64) Events {
	if !store.enabled {
		return Events{}
	}

	store.lock.RLock()
	data, err := store.db.Get(getKeyForHeight(height))
	store.lock.RUnlock()
	if err != nil {
		panic(err)
	}

	if len(data) == 0 {
		return Events{}
	}

	var decoded Events
	if err := cdc.UnmarshalBinaryBare(data, &decoded); err != nil {
		panic(err)
	}

	return decoded
}

func (store *eventsStore) getEvents(height uint64) Events {
	cachedHeight, events := store.cache.get()
	if cachedHeight == height {
		return events
	}

	return store.LoadEvents(height)
}

func getKeyForHeight(height uint64) []byte {
	var h = make([]byte, 8)
	binary.BigEndian.PutUint64(h, height)

	return h
}
