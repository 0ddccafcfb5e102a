package tokens

import (
	"github.com/MinterTeam/minter-presale/core/types"
)

type Model struct {
	CName        string
	CSymbol      string
	CDecimals    uint8
	CTotalSupply uint64

	address   types.Address
	isDirty   bool
	markDirty func(types.Address)
}

func (m Model) Name() string {
	return m.CName
}

func (m Model) Symbol() string {
	return m.CSymbol
}

func (m Model) Decimals() uint8 {
	return m.CDecimals
}

func (m Model) TotalSupply() uint64 {
	return m.CTotalSupply
}

func (m Model) Address() types.Address {
	return m.address
}

type balanceKey struct {
	token  types.Address
	holder types.Address
}

func (k balanceKey) path() []byte {
	path := []byte{mainPrefix, balancePrefix}
	path = append(path, k.token.Bytes()...)
	return append(path, k.holder.Bytes()...)
}

type allowanceKey struct {
	token   types.Address
	owner   types.Address
	spender types.Address
}

func (k allowanceKey) path() []byte {
	path := []byte{mainPrefix, allowancePrefix}
	path = append(path, k.token.Bytes()...)
	path = append(path, k.owner.Bytes()...)
	return append(path, k.spender.Bytes()...)
}
