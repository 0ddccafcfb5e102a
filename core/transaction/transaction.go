package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/crypto/secp256k1"
	"golang.org/x/crypto/sha3"
)

// TxType of transaction is determined by a single byte.
type TxType byte

func (t TxType) String() string {
	return "0x" + hex.EncodeToString([]byte{byte(t)})
}

func (t TxType) UInt64() uint64 {
	return uint64(t)
}

const (
	TypeTransfer     TxType = 0x01
	TypeTransferFrom TxType = 0x02
	TypeApprove      TxType = 0x03
	TypeSend         TxType = 0x04

	TypeTransferSaleOwnership TxType = 0x10
	TypeSetMerkleRoot         TxType = 0x11
	TypeUpdatePresaleInfo     TxType = 0x12
	TypeDeposit               TxType = 0x13
	TypeDepositPrivateSale    TxType = 0x14
	TypeWithdrawFunds         TxType = 0x15
	TypeWithdrawUnsoldToken   TxType = 0x16
	TypeStartVesting          TxType = 0x17

	TypeAddToWhitelist             TxType = 0x20
	TypeRemoveFromWhitelist        TxType = 0x21
	TypeTransferWhitelistOwnership TxType = 0x22

	TypeUpdateRecipient          TxType = 0x30
	TypeSetStartTime             TxType = 0x31
	TypeTransferVestingOwnership TxType = 0x32
	TypeWithdraw                 TxType = 0x33

	TypeLock                TxType = 0x40
	TypeUnlock              TxType = 0x41
	TypeUpdateLockingConfig TxType = 0x42
)

var (
	ErrInvalidSig    = errors.New("invalid transaction signature")
	ErrInvalidPubKey = errors.New("invalid public key")
)

var cdc = amino.NewCodec()

// Transaction is a signed call of a single entrypoint
type Transaction struct {
	Nonce     uint64
	ChainID   types.ChainID
	Type      TxType
	Data      RawData
	Payload   []byte
	PubKey    []byte
	Signature []byte

	decodedData Data
	sender      *types.Address
}

type RawData []byte

type unsignedTransaction struct {
	Nonce   uint64
	ChainID types.ChainID
	Type    TxType
	Data    RawData
	Payload []byte
}

// Data is a closed set of entrypoints. Run validates the call against the state and,
// when the context is a deliver state, applies it.
type Data interface {
	String() string
	TxType() TxType
	Run(sender types.Address, context state.Interface, currentTime uint64) Response
}

// Message is an instruction emitted by a contract, executed after the emitting call commits
type Message struct {
	Sender types.Address
	Data   Data
}

func (m Message) String() string {
	return fmt.Sprintf("MSG from:%s data:%s", m.Sender.String(), m.Data.String())
}

// NewTx builds an unsigned transaction of the given data
func NewTx(nonce uint64, data Data, payload []byte) (*Transaction, error) {
	encoded, err := cdc.MarshalBinaryBare(data)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Nonce:       nonce,
		ChainID:     types.CurrentChainID,
		Type:        data.TxType(),
		Data:        encoded,
		Payload:     payload,
		decodedData: data,
	}, nil
}

func (tx *Transaction) Serialize() ([]byte, error) {
	return cdc.MarshalBinaryBare(tx)
}

func (tx *Transaction) String() string {
	sender, _ := tx.Sender()

	return fmt.Sprintf("TX nonce:%d from:%s payload:%s data:%s",
		tx.Nonce, sender.String(), tx.Payload, tx.decodedData.String())
}

// Hash is the Keccak-256 of the unsigned part, the message signed by the sender
func (tx *Transaction) Hash() types.Hash {
	encoded, err := cdc.MarshalBinaryBare(unsignedTransaction{
		Nonce:   tx.Nonce,
		ChainID: tx.ChainID,
		Type:    tx.Type,
		Data:    tx.Data,
		Payload: tx.Payload,
	})
	if err != nil {
		panic(err)
	}

	return keccakHash(encoded)
}

func (tx *Transaction) Sign(privKey secp256k1.PrivKey) error {
	h := tx.Hash()
	sig, err := privKey.Sign(h[:])
	if err != nil {
		return err
	}

	tx.PubKey = privKey.PubKey().Bytes()
	tx.Signature = sig
	tx.sender = nil

	return nil
}

// Sender verifies the signature and returns the address of the signer
func (tx *Transaction) Sender() (types.Address, error) {
	if tx.sender != nil {
		return *tx.sender, nil
	}

	if len(tx.PubKey) != secp256k1.PubKeySize {
		return types.Address{}, ErrInvalidPubKey
	}

	pubKey := secp256k1.PubKey(tx.PubKey)
	h := tx.Hash()
	if !pubKey.VerifySignature(h[:], tx.Signature) {
		return types.Address{}, ErrInvalidSig
	}

	sender := types.BytesToAddress(pubKey.Address())
	tx.sender = &sender

	return sender, nil
}

func (tx *Transaction) MustSender() types.Address {
	sender, err := tx.Sender()
	if err != nil {
		panic(err)
	}
	return sender
}

func (tx *Transaction) SetDecodedData(data Data) {
	tx.decodedData = data
}

func (tx *Transaction) GetDecodedData() Data {
	return tx.decodedData
}

// TxHash returns the Keccak-256 of raw transaction bytes
func TxHash(rawTx []byte) types.Hash {
	return keccakHash(rawTx)
}

// AddressFromPubKey returns the address of a compressed secp256k1 public key
func AddressFromPubKey(pubKey []byte) (types.Address, error) {
	if len(pubKey) != secp256k1.PubKeySize {
		return types.Address{}, ErrInvalidPubKey
	}

	return types.BytesToAddress(secp256k1.PubKey(pubKey).Address()), nil
}

func keccakHash(data []byte) (h types.Hash) {
	hw := sha3.NewLegacyKeccak256()
	hw.Write(data)
	hw.Sum(h[:0])
	return h
}
