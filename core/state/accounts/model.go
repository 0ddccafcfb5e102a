package accounts

import (
	"github.com/MinterTeam/minter-presale/core/types"
)

type Model struct {
	Nonce uint64

	address   types.Address
	isDirty   bool
	markDirty func(types.Address)
}

func (model *Model) setNonce(nonce uint64) {
	model.Nonce = nonce
	model.isDirty = true
	model.markDirty(model.address)
}
