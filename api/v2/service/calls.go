package service

import (
	"context"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/presale"
	"github.com/MinterTeam/minter-presale/core/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Query runs q against the state at height, 0 means the latest version
func (s *Service) Query(ctx context.Context, q *query.Query, height uint64) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	result, err := s.blockchain.Query(q, height)
	if err != nil {
		return nil, s.statusError(err)
	}

	return result, nil
}

// SendTransaction delivers a hex encoded call and runs the instructions it emits
func (s *Service) SendTransaction(ctx context.Context, tx string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	decodedTx, err := parseHexTx(tx)
	if err != nil {
		return nil, err
	}

	result := s.blockchain.DeliverTx(decodedTx)
	if !result.IsOK() {
		return nil, s.callError(result)
	}

	return result, nil
}

// CheckTransaction runs a hex encoded call against the latest state without committing it
func (s *Service) CheckTransaction(ctx context.Context, tx string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	decodedTx, err := parseHexTx(tx)
	if err != nil {
		return nil, err
	}

	result := s.blockchain.CheckTx(decodedTx)
	if !result.IsOK() {
		return nil, s.callError(result)
	}

	return result, nil
}

type EventItem struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type EventsResponse struct {
	Height uint64      `json:"height,string"`
	Events []EventItem `json:"events"`
}

func (s *Service) Events(ctx context.Context, height uint64) (*EventsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	if height == 0 || height > s.blockchain.Height() {
		return nil, status.Errorf(codes.NotFound, "height %d is not committed yet", height)
	}

	events := s.blockchain.Events(height)
	response := &EventsResponse{Height: height, Events: make([]EventItem, 0, len(events))}
	for _, event := range events {
		response.Events = append(response.Events, EventItem{Type: event.Type(), Value: event})
	}

	return response, nil
}

// callError carries the call code and its info as status details
func (s *Service) callError(result presale.CallResult) error {
	grpcCode := codes.InvalidArgument
	if result.Code == code.UnknownToken {
		grpcCode = codes.NotFound
	}

	details := string(result.Info)
	if details == "" {
		details = code.EncodeError(map[string]string{"code": strconv.FormatUint(uint64(result.Code), 10)})
	}

	return s.createError(status.New(grpcCode, result.Log), details)
}
