package appdb

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tm-db"
)

const (
	hashPath        = "hash"
	heightPath      = "height"
	startHeightPath = "startHeight"
	lastTimePath    = "lastTime"
	versionsPath    = "versions"

	dbName = "app"
)

// AppDB is responsible for storing basic information about app state on disk
type AppDB struct {
	db db.DB

	startHeight uint64
	lastHeight  uint64
	lastTime    uint64

	lock            sync.Mutex
	isDirtyVersions bool
	versions        []*Version
}

// NewAppDB opens the app database in dir with the given backend
func NewAppDB(dir string, backend string) (*AppDB, error) {
	newDB, err := db.NewDB(dbName, db.BackendType(backend), dir)
	if err != nil {
		return nil, err
	}

	return NewAppDBWithDB(newDB), nil
}

func NewAppDBWithDB(db db.DB) *AppDB {
	return &AppDB{db: db}
}

// Close closes db connection
func (appDB *AppDB) Close() error {
	return appDB.db.Close()
}

// GetLastHash returns the app hash of the last committed call
func (appDB *AppDB) GetLastHash() []byte {
	rawHash, err := appDB.db.Get([]byte(hashPath))
	if err != nil {
		panic(err)
	}

	if len(rawHash) == 0 {
		return nil
	}

	return rawHash
}

// SetLastHash stores given hash on disk, panics on error
func (appDB *AppDB) SetLastHash(hash []byte) {
	if err := appDB.db.Set([]byte(hashPath), hash); err != nil {
		panic(err)
	}
}

// GetLastHeight returns latest height stored on disk
func (appDB *AppDB) GetLastHeight() uint64 {
	return appDB.loadUint64(&appDB.lastHeight, heightPath)
}

// SetLastHeight stores given height on disk, panics on error
func (appDB *AppDB) SetLastHeight(height uint64) {
	appDB.storeUint64(&appDB.lastHeight, heightPath, height)
}

// GetStartHeight returns the height the node was initialised from
func (appDB *AppDB) GetStartHeight() uint64 {
	return appDB.loadUint64(&appDB.startHeight, startHeightPath)
}

func (appDB *AppDB) SetStartHeight(height uint64) {
	appDB.storeUint64(&appDB.startHeight, startHeightPath, height)
}

// GetLastTime returns the clock watermark of the last committed call
func (appDB *AppDB) GetLastTime() uint64 {
	return appDB.loadUint64(&appDB.lastTime, lastTimePath)
}

func (appDB *AppDB) SetLastTime(time uint64) {
	appDB.storeUint64(&appDB.lastTime, lastTimePath, time)
}

func (appDB *AppDB) loadUint64(cache *uint64, path string) uint64 {
	val := atomic.LoadUint64(cache)
	if val != 0 {
		return val
	}

	result, err := appDB.db.Get([]byte(path))
	if err != nil {
		panic(err)
	}

	if len(result) != 0 {
		val = binary.BigEndian.Uint64(result)
		atomic.StoreUint64(cache, val)
	}

	return val
}

func (appDB *AppDB) storeUint64(cache *uint64, path string, value uint64) {
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, value)

	if err := appDB.db.Set([]byte(path), h); err != nil {
		panic(err)
	}

	atomic.StoreUint64(cache, value)
}

// Version is the node version which started processing calls at Height
type Version struct {
	Name   string
	Height uint64
}

func (appDB *AppDB) GetVersions() []*Version {
	appDB.lock.Lock()
	defer appDB.lock.Unlock()

	return appDB.getVersions()
}

func (appDB *AppDB) getVersions() []*Version {
	if len(appDB.versions) != 0 {
		return appDB.versions
	}

	result, err := appDB.db.Get([]byte(versionsPath))
	if err != nil {
		panic(err)
	}
	if len(result) != 0 {
		if err := tmjson.Unmarshal(result, &appDB.versions); err != nil {
			panic(err)
		}
	}

	return appDB.versions
}

// AddVersion records v unless it is already the latest one
func (appDB *AppDB) AddVersion(v string, height uint64) {
	appDB.lock.Lock()
	defer appDB.lock.Unlock()

	versions := appDB.getVersions()
	if len(versions) != 0 && versions[len(versions)-1].Name == v {
		return
	}

	appDB.versions = append(versions, &Version{Name: v, Height: height})
	appDB.isDirtyVersions = true
}

func (appDB *AppDB) SaveVersions() {
	appDB.lock.Lock()
	defer appDB.lock.Unlock()

	if !appDB.isDirtyVersions {
		return
	}

	data, err := tmjson.Marshal(appDB.versions)
	if err != nil {
		panic(err)
	}

	if err := appDB.db.Set([]byte(versionsPath), data); err != nil {
		panic(err)
	}

	appDB.isDirtyVersions = false
}
