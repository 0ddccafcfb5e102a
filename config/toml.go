package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	tmos "github.com/tendermint/tendermint/libs/os"
)

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't exist,
// and panics if it fails.
func EnsureRoot(rootDir string) {
	if err := tmos.EnsureDir(rootDir, 0700); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), 0700); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultDataDir), 0700); err != nil {
		panic(err.Error())
	}

	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)

	// Write default config file if missing.
	if !tmos.FileExists(configFilePath) {
		writeDefaultConfigFile(configFilePath)
	}
}

func writeDefaultConfigFile(configFilePath string) {
	WriteConfigFile(configFilePath, DefaultConfig())
}

// WriteConfigFile renders config using the template and writes it to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	buffer, err := RenderConfig(config)
	if err != nil {
		panic(err)
	}

	tmos.MustWriteFile(configFilePath, buffer, 0644)
}

// RenderConfig renders config as a TOML document
func RenderConfig(config *Config) ([]byte, error) {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, config); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}

	return buffer.Bytes(), nil
}

// ConfigFilePath returns the path of config.toml inside rootDir
func ConfigFilePath(rootDir string) string {
	return filepath.Join(rootDir, defaultConfigFilePath)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

##### main base config options #####

# Path to the JSON file containing the initial state
genesis_file = "{{ js .BaseConfig.Genesis }}"

# Output level for logging, including package level options
log_level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log_format = "{{ .BaseConfig.LogFormat }}"

# Path to file for logs, "stdout" by default
log_path = "{{ js .BaseConfig.LogPath }}"

# Database backend: goleveldb | memdb
db_backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db_dir = "{{ js .BaseConfig.DBPath }}"

# Count of items kept in the state node cache
state_cache_size = {{ .BaseConfig.StateCacheSize }}

# State memory allocation in megabytes. Should be at least 1024
state_mem_available = {{ .BaseConfig.StateMemAvailable }}

# Number of state versions kept on disk. Older versions are pruned
keep_last_states = {{ .BaseConfig.KeepLastStates }}

# Address to listen for REST connections
api_listen_addr = "{{ .BaseConfig.APIListenAddress }}"

# Address to listen for gRPC connections
grpc_listen_addr = "{{ .BaseConfig.GRPCListenAddress }}"

# Limits the number of simultaneous API requests
api_simultaneous_requests = {{ .BaseConfig.APISimultaneousRequests }}

# Human readable part of bech32 addresses
address_prefix = "{{ .BaseConfig.AddressPrefix }}"

# Store events of every committed call. Disables /v2/events when false
events_enabled = {{ .BaseConfig.EventsEnabled }}

##### instrumentation configuration options #####
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus_listen_addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Maximum number of simultaneous connections.
# 0 - unlimited.
max_open_connections = {{ .Instrumentation.MaxOpenConnections }}

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
