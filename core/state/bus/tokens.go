package bus

import "github.com/MinterTeam/minter-presale/core/types"

type Tokens interface {
	Info(token types.Address) *TokenInfo
	Balance(token types.Address, holder types.Address) uint64
}

type TokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply uint64
}
