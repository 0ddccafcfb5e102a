package tokens

import (
	"github.com/MinterTeam/minter-presale/core/state/bus"
	"github.com/MinterTeam/minter-presale/core/types"
)

type Bus struct {
	tokens *Tokens
}

func NewBus(tokens *Tokens) *Bus {
	return &Bus{tokens: tokens}
}

func (b *Bus) Info(token types.Address) *bus.TokenInfo {
	model := b.tokens.GetToken(token)
	if model == nil {
		return nil
	}

	return &bus.TokenInfo{
		Name:        model.Name(),
		Symbol:      model.Symbol(),
		Decimals:    model.Decimals(),
		TotalSupply: model.TotalSupply(),
	}
}

func (b *Bus) Balance(token types.Address, holder types.Address) uint64 {
	return b.tokens.GetBalance(token, holder)
}
