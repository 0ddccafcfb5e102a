package service

import (
	"context"
	"fmt"

	"github.com/MinterTeam/minter-presale/core/types"
)

type StatusResponse struct {
	Version        string       `json:"version"`
	AppVersion     uint64       `json:"app_version,string"`
	Network        string       `json:"network"`
	Height         uint64       `json:"latest_height,string"`
	AppHash        string       `json:"latest_app_hash"`
	LastTime       uint64       `json:"latest_time,string"`
	InitialHeight  uint64       `json:"initial_height,string"`
	KeepLastStates uint64       `json:"keep_last_states,string"`
	Initialized    bool         `json:"initialized"`
	LastCall       LastCallInfo `json:"last_call"`
}

type LastCallInfo struct {
	Height    uint64  `json:"height,string"`
	Type      string  `json:"type"`
	Code      uint32  `json:"code"`
	Duration  float64 `json:"duration"`
	Timestamp uint64  `json:"timestamp,string"`
}

// Status returns the last committed version of the node state
func (s *Service) Status(_ context.Context) (*StatusResponse, error) {
	status := s.blockchain.Status()
	lastCall := s.blockchain.StatisticData().GetLastCallInfo()

	network := "mainnet"
	if status.ChainID == types.ChainTestnet {
		network = "testnet"
	}

	return &StatusResponse{
		Version:        s.version,
		AppVersion:     status.AppVersion,
		Network:        network,
		Height:         status.Height,
		AppHash:        fmt.Sprintf("%X", status.Hash),
		LastTime:       status.LastTime,
		InitialHeight:  status.InitialHeight + 1,
		KeepLastStates: uint64(s.cfg.KeepLastStates),
		Initialized:    status.Initialized,
		LastCall: LastCallInfo{
			Height:    lastCall.Height,
			Type:      lastCall.Type,
			Code:      lastCall.Code,
			Duration:  lastCall.Duration,
			Timestamp: lastCall.Timestamp,
		},
	}, nil
}
