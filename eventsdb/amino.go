package eventsdb

import "github.com/tendermint/go-amino"

func RegisterAminoEvents(codec *amino.Codec) {
	codec.RegisterInterface((*Event)(nil), nil)
	codec.RegisterConcrete(DepositEvent{},
		TypeDepositEvent, nil)
	codec.RegisterConcrete(VestingWithdrawEvent{},
		TypeVestingWithdrawEvent, nil)
	codec.RegisterConcrete(LockEvent{},
		TypeLockEvent, nil)
	codec.RegisterConcrete(UnlockEvent{},
		TypeUnlockEvent, nil)
	codec.RegisterConcrete(TransferEvent{},
		TypeTransferEvent, nil)
}
