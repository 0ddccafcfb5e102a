package types

// ChainID is ID of the network (1 - mainnet, 2 - testnet)
type ChainID byte

const (
	// ChainMainnet is mainnet chain ID of the network
	ChainMainnet ChainID = 0x01
	// ChainTestnet is testnet chain ID of the network
	ChainTestnet ChainID = 0x02
)

// CurrentChainID is current ChainID of the network
var CurrentChainID = ChainMainnet

// AddressPrefix is the bech32 human readable part of every address
var AddressPrefix = "presale"

const (
	// Accuracy scales the sale exchange rate
	Accuracy uint64 = 100000000

	// PermilleBase is the denominator of vesting release rates
	PermilleBase uint64 = 1000

	// SecondsPerDay is used by the locking penalty schedule
	SecondsPerDay uint64 = 86400
)
