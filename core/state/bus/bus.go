package bus

import "github.com/MinterTeam/minter-presale/eventsdb"

type Bus struct {
	tokens    Tokens
	whitelist Whitelist
	events    eventsdb.IEventsDB
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SetTokens(tokens Tokens) {
	b.tokens = tokens
}

func (b *Bus) Tokens() Tokens {
	return b.tokens
}

func (b *Bus) SetWhitelist(whitelist Whitelist) {
	b.whitelist = whitelist
}

func (b *Bus) Whitelist() Whitelist {
	return b.whitelist
}

func (b *Bus) SetEvents(events eventsdb.IEventsDB) {
	b.events = events
}

func (b *Bus) Events() eventsdb.IEventsDB {
	return b.events
}
