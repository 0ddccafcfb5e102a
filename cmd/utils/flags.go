package utils

import (
	"os"
	"path/filepath"
)

var (
	PresaleHome   string
	PresaleConfig string
)

func GetPresaleHome() string {
	if PresaleHome != "" {
		return PresaleHome
	}

	home := os.Getenv("PRESALEHOME")

	if home != "" {
		return home
	}

	return os.ExpandEnv(filepath.Join("$HOME", ".presale"))
}

func GetPresaleConfigPath() string {
	if PresaleConfig != "" {
		return PresaleConfig
	}

	return GetPresaleHome() + "/config/config.toml"
}
