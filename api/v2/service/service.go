package service

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/MinterTeam/minter-presale/config"
	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/presale"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/helpers"
	"github.com/golang/protobuf/jsonpb"
	_struct "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service serves the presale API over gRPC and REST
type Service struct {
	blockchain *presale.Blockchain
	cfg        *config.Config
	version    string
	logger     log.Logger

	subscribeDuration time.Duration
}

func NewService(blockchain *presale.Blockchain, cfg *config.Config, version string, logger log.Logger) *Service {
	return &Service{
		blockchain:        blockchain,
		cfg:               cfg,
		version:           version,
		logger:            logger,
		subscribeDuration: time.Hour,
	}
}

func (s *Service) createError(statusErr *status.Status, data string) error {
	if len(data) == 0 {
		return statusErr.Err()
	}

	detailsMap := &_struct.Struct{Fields: make(map[string]*_struct.Value)}
	if err := (&jsonpb.Unmarshaler{}).Unmarshal(bytes.NewBufferString(data), detailsMap); err != nil {
		s.logger.Error(err.Error())
		return statusErr.Err()
	}

	withDetails, err := statusErr.WithDetails(detailsMap)
	if err != nil {
		s.logger.Error(err.Error())
		return statusErr.Err()
	}

	return withDetails.Err()
}

// statusError converts errors of the core layers into status errors
func (s *Service) statusError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	if errors.Is(err, presale.ErrNotInitialized) {
		return status.Error(codes.Unavailable, err.Error())
	}

	c, msg := code.FromError(err)
	details := map[string]string{"code": strconv.FormatUint(uint64(c), 10)}

	switch c {
	case code.InvalidInput, code.ProofDecodeError:
		return s.createError(status.New(codes.InvalidArgument, msg), code.EncodeError(details))
	case code.UnknownToken:
		return s.createError(status.New(codes.NotFound, msg), code.EncodeError(details))
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts a json serializable value into a protobuf Struct
func toStruct(v interface{}) (*_struct.Struct, error) {
	byteData, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	data := &_struct.Struct{Fields: make(map[string]*_struct.Value)}
	if err := (&jsonpb.Unmarshaler{}).Unmarshal(bytes.NewReader(byteData), data); err != nil {
		return nil, err
	}

	return data, nil
}

func parseAddress(name, value string) (types.Address, error) {
	address, err := types.AddressFromString(value)
	if err != nil {
		return types.Address{}, status.Errorf(codes.InvalidArgument, "invalid %s: %s", name, err)
	}
	return address, nil
}

func parseUint(name, value string) (uint64, error) {
	result, err := helpers.StringToUint64(value, 0)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %s", name, err)
	}
	return result, nil
}

func parseHexTx(tx string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(tx, "0x"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "tx should be hex encoded: "+err.Error())
	}
	return decoded, nil
}
