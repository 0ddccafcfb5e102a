package config

import (
	"fmt"
	"path/filepath"

	"github.com/MinterTeam/minter-presale/cmd/utils"
	tmConfig "github.com/tendermint/tendermint/config"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName  = "config.toml"
	defaultGenesisJSONName = "genesis.json"
)

var (
	defaultConfigFilePath  = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisJSONPath = filepath.Join(defaultConfigDir, defaultGenesisJSONName)
)

// DefaultConfig returns config with production defaults
func DefaultConfig() *Config {
	cfg := defaultConfig()

	cfg.Instrumentation.Namespace = "presale"
	cfg.Instrumentation.PrometheusListenAddr = ":26660"

	return cfg
}

// GetConfig returns the default config rooted at the presale home, creating the home if needed
func GetConfig() *Config {
	cfg := DefaultConfig()

	cfg.SetRoot(utils.GetPresaleHome())
	EnsureRoot(utils.GetPresaleHome())

	return cfg
}

// Config defines the top level configuration of the presale node
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for prometheus metrics
	Instrumentation *tmConfig.InstrumentationConfig `mapstructure:"instrumentation"`
}

func defaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Instrumentation: tmConfig.DefaultInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation and returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %v", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for the presale node
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Path to the JSON file containing the initial state
	Genesis string `mapstructure:"genesis_file"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	// Path to file for logs, "stdout" by default
	LogPath string `mapstructure:"log_path"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Count of items kept in the iavl node cache
	StateCacheSize int `mapstructure:"state_cache_size"`

	// Memory in megabytes given to the state database
	StateMemAvailable int `mapstructure:"state_mem_available"`

	// Number of state versions to keep on disk
	KeepLastStates int64 `mapstructure:"keep_last_states"`

	// Address to listen for REST connections
	APIListenAddress string `mapstructure:"api_listen_addr"`

	// Address to listen for gRPC connections
	GRPCListenAddress string `mapstructure:"grpc_listen_addr"`

	// Limit of simultaneous API requests
	APISimultaneousRequests int `mapstructure:"api_simultaneous_requests"`

	// Human readable part of bech32 addresses
	AddressPrefix string `mapstructure:"address_prefix"`

	// Store events of every committed call
	EventsEnabled bool `mapstructure:"events_enabled"`
}

// DefaultBaseConfig returns a default base configuration for the presale node
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		Genesis:                 defaultGenesisJSONPath,
		LogLevel:                DefaultPackageLogLevels(),
		LogFormat:               LogFormatPlain,
		LogPath:                 "stdout",
		DBBackend:               "goleveldb",
		DBPath:                  defaultDataDir,
		StateCacheSize:          1000000,
		StateMemAvailable:       1024,
		KeepLastStates:          120,
		APIListenAddress:        "tcp://0.0.0.0:8843",
		GRPCListenAddress:       "tcp://0.0.0.0:8842",
		APISimultaneousRequests: 100,
		AddressPrefix:           "presale",
		EventsEnabled:           true,
	}
}

// GenesisFile returns the full path to the genesis.json file
func (cfg BaseConfig) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log_format (must be '%s' or '%s')", LogFormatPlain, LogFormatJSON)
	}
	if cfg.KeepLastStates < 1 {
		return fmt.Errorf("keep_last_states should be greater than 0")
	}
	if cfg.StateMemAvailable < 1024 {
		return fmt.Errorf("state_mem_available should be at least 1024, got %d", cfg.StateMemAvailable)
	}
	if cfg.APISimultaneousRequests < 1 {
		return fmt.Errorf("api_simultaneous_requests should be positive")
	}
	if cfg.AddressPrefix == "" {
		return fmt.Errorf("address_prefix can't be empty")
	}
	return nil
}

// DefaultLogLevel returns a default log level of "error"
func DefaultLogLevel() string {
	return "error"
}

// DefaultPackageLogLevels returns a default log level setting so all packages
// log at "error", while the `presale`, `state` and `api` packages log at "info"
func DefaultPackageLogLevels() string {
	return fmt.Sprintf("presale:info,state:info,api:info,*:%s", DefaultLogLevel())
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

