package utils

import (
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	db "github.com/tendermint/tm-db"
)

// Storage owns the databases of a presale node
type Storage struct {
	presaleHome   string
	presaleConfig string
	eventDB       db.DB
	stateDB       db.DB
}

// NewStorage keeps databases in memory until InitStateLevelDB and InitEventLevelDB are called
func NewStorage(home string, config string) *Storage {
	if home == "" {
		home = GetPresaleHome()
	}
	if config == "" {
		config = home + "/config/config.toml"
	}

	return &Storage{
		presaleHome:   home,
		presaleConfig: config,
		eventDB:       db.NewMemDB(),
		stateDB:       db.NewMemDB(),
	}
}

func (s *Storage) SetStateDB(stateDB db.DB) {
	s.stateDB = stateDB
}

func (s *Storage) SetEventDB(eventDB db.DB) {
	s.eventDB = eventDB
}

func (s *Storage) EventDB() db.DB {
	return s.eventDB
}

func (s *Storage) StateDB() db.DB {
	return s.stateDB
}

func (s *Storage) InitEventLevelDB(name string, opts *opt.Options) (db.DB, error) {
	levelDB, err := db.NewGoLevelDBWithOpts(name, filepath.Join(s.presaleHome, "data"), opts)
	if err != nil {
		return nil, err
	}
	s.eventDB = levelDB
	return s.eventDB, nil
}

func (s *Storage) InitStateLevelDB(name string, opts *opt.Options) (db.DB, error) {
	levelDB, err := db.NewGoLevelDBWithOpts(name, filepath.Join(s.presaleHome, "data"), opts)
	if err != nil {
		return nil, err
	}
	s.stateDB = levelDB
	return s.stateDB, nil
}

func (s *Storage) GetPresaleHome() string {
	return s.presaleHome
}

func (s *Storage) GetPresaleConfigPath() string {
	return s.presaleConfig
}

// Close closes state and events databases
func (s *Storage) Close() error {
	if err := s.stateDB.Close(); err != nil {
		return err
	}
	return s.eventDB.Close()
}

// GetDbOpts returns goleveldb options sized to memLimit megabytes
func GetDbOpts(memLimit int) *opt.Options {
	if memLimit < 1024 {
		panic(fmt.Sprintf("Not enough memory given to StateDB. Expected >1024M, given %d", memLimit))
	}
	return &opt.Options{
		OpenFilesCacheCapacity: memLimit,
		BlockCacheCapacity:     memLimit / 2 * opt.MiB,
		WriteBuffer:            memLimit / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	}
}
