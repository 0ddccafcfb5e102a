package transaction

import (
	"fmt"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

const (
	maxPayloadLength = 1024
	maxTxLength      = 16384 + maxPayloadLength
)

// Response represents standard response from tx delivery/check
type Response struct {
	Code     uint32                    `json:"code,omitempty"`
	Data     []byte                    `json:"data,omitempty"`
	Log      string                    `json:"log,omitempty"`
	Info     string                    `json:"-"`
	Tags     []abcTypes.EventAttribute `json:"tags,omitempty"`
	Messages []Message                 `json:"-"`
	Events   eventsdb.Events           `json:"-"`
}

func (r Response) IsOK() bool {
	return r.Code == code.OK
}

type Executor struct {
	decodeTxFunc func(txType TxType) (Data, bool)
}

func NewExecutor(decodeTxFunc func(txType TxType) (Data, bool)) *Executor {
	return &Executor{decodeTxFunc: decodeTxFunc}
}

// DecodeFromBytes decodes the envelope and its data
func (e *Executor) DecodeFromBytes(buf []byte) (*Transaction, error) {
	tx := &Transaction{}
	if err := cdc.UnmarshalBinaryBare(buf, tx); err != nil {
		return nil, err
	}

	data, ok := e.decodeTxFunc(tx.Type)
	if !ok {
		return nil, fmt.Errorf("tx type %s is not registered", tx.Type)
	}

	// entrypoints without arguments are encoded as empty bytes
	if len(tx.Data) != 0 {
		if err := cdc.UnmarshalBinaryBare(tx.Data, data); err != nil {
			return nil, err
		}
	}

	tx.SetDecodedData(data)

	return tx, nil
}

// RunTx executes transaction in given context
func (e *Executor) RunTx(context state.Interface, rawTx []byte, currentTime uint64) Response {
	lenRawTx := len(rawTx)
	if lenRawTx > maxTxLength {
		return Response{
			Code: code.TxTooLarge,
			Log:  fmt.Sprintf("TX length is over %d bytes", maxTxLength),
			Info: code.EncodeError(code.NewTxTooLarge(strconv.Itoa(maxTxLength), strconv.Itoa(lenRawTx))),
		}
	}

	tx, err := e.DecodeFromBytes(rawTx)
	if err != nil {
		return Response{
			Code: code.DecodeError,
			Log:  err.Error(),
			Info: code.EncodeError(code.NewDecodeError()),
		}
	}

	if tx.ChainID != types.CurrentChainID {
		return Response{
			Code: code.WrongChainID,
			Log:  "Wrong chain id",
			Info: code.EncodeError(code.NewWrongChainID(strconv.Itoa(int(types.CurrentChainID)), strconv.Itoa(int(tx.ChainID)))),
		}
	}

	if lenPayload := len(tx.Payload); lenPayload > maxPayloadLength {
		return Response{
			Code: code.TxTooLarge,
			Log:  fmt.Sprintf("TX payload length is over %d bytes", maxPayloadLength),
			Info: code.EncodeError(code.NewTxTooLarge(strconv.Itoa(maxPayloadLength), strconv.Itoa(lenPayload))),
		}
	}

	sender, err := tx.Sender()
	if err != nil {
		return Response{
			Code: code.InvalidSignature,
			Log:  err.Error(),
			Info: code.EncodeError(code.NewInvalidSignature()),
		}
	}

	checkState, deliverState := contexts(context)

	if expectedNonce := checkState.Accounts().GetNonce(sender) + 1; expectedNonce != tx.Nonce {
		return Response{
			Code: code.WrongNonce,
			Log:  fmt.Sprintf("Unexpected nonce. Expected: %d, got %d.", expectedNonce, tx.Nonce),
			Info: code.EncodeError(code.NewWrongNonce(strconv.FormatUint(expectedNonce, 10), strconv.FormatUint(tx.Nonce, 10))),
		}
	}

	response := tx.decodedData.Run(sender, context, currentTime)
	if !response.IsOK() {
		return response
	}

	if deliverState != nil {
		deliverState.Accounts.SetNonce(sender, tx.Nonce)
	}

	response.Tags = append(response.Tags,
		abcTypes.EventAttribute{Key: []byte("tx.from"), Value: []byte(sender.String()), Index: true},
		abcTypes.EventAttribute{Key: []byte("tx.type"), Value: []byte(tx.Type.String()), Index: true},
		abcTypes.EventAttribute{Key: []byte("tx.hash"), Value: []byte(TxHash(rawTx).String()), Index: true},
	)

	return response
}

// RunMessage executes an instruction on behalf of the emitting contract
func (e *Executor) RunMessage(context state.Interface, msg Message, currentTime uint64) Response {
	response := msg.Data.Run(msg.Sender, context, currentTime)
	if !response.IsOK() {
		return response
	}

	response.Tags = append(response.Tags,
		abcTypes.EventAttribute{Key: []byte("msg.from"), Value: []byte(msg.Sender.String()), Index: true},
		abcTypes.EventAttribute{Key: []byte("msg.type"), Value: []byte(msg.Data.TxType().String()), Index: true},
	)

	return response
}
