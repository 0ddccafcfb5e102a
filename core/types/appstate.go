package types

import (
	"encoding/hex"
	"fmt"
)

type AppState struct {
	Note      string    `json:"note"`
	Accounts  []Account `json:"accounts,omitempty"`
	Tokens    []Token   `json:"tokens,omitempty"`
	Sale      Sale      `json:"sale"`
	Whitelist Whitelist `json:"whitelist"`
	Vesting   Vesting   `json:"vesting"`
	Locking   Locking   `json:"locking"`
}

func (s *AppState) Verify() error {
	tokens := map[Address]*Token{}
	for i, token := range s.Tokens {
		if _, exists := tokens[token.Address]; exists {
			return fmt.Errorf("duplicated token %s", token.Address.String())
		}
		tokens[token.Address] = &s.Tokens[i]

		var total uint64
		holders := map[Address]struct{}{}
		for _, balance := range token.Balances {
			if _, exists := holders[balance.Holder]; exists {
				return fmt.Errorf("duplicated balance of %s in token %s", balance.Holder.String(), token.Address.String())
			}
			holders[balance.Holder] = struct{}{}

			sum := total + balance.Amount
			if sum < total || sum > token.TotalSupply {
				return fmt.Errorf("balances of token %s exceed total supply", token.Address.String())
			}
			total = sum
		}

		if total != token.TotalSupply {
			return fmt.Errorf("balances of token %s do not match total supply: %d != %d", token.Address.String(), total, token.TotalSupply)
		}
	}

	accounts := map[Address]struct{}{}
	for _, account := range s.Accounts {
		if _, exists := accounts[account.Address]; exists {
			return fmt.Errorf("duplicated account %s", account.Address.String())
		}
		accounts[account.Address] = struct{}{}
	}

	if err := s.Sale.verify(tokens); err != nil {
		return fmt.Errorf("sale: %v", err)
	}

	if err := s.Whitelist.verify(); err != nil {
		return fmt.Errorf("whitelist: %v", err)
	}

	if err := s.Vesting.verify(tokens); err != nil {
		return fmt.Errorf("vesting: %v", err)
	}

	if err := s.Locking.verify(tokens); err != nil {
		return fmt.Errorf("locking: %v", err)
	}

	contracts := map[Address]string{}
	for name, contract := range map[string]Address{
		"sale":      s.Sale.Contract,
		"whitelist": s.Whitelist.Contract,
		"vesting":   s.Vesting.Contract,
		"locking":   s.Locking.Contract,
	} {
		if other, exists := contracts[contract]; exists {
			return fmt.Errorf("%s and %s contracts share address %s", name, other, contract.String())
		}
		contracts[contract] = name
	}

	return nil
}

type Account struct {
	Address Address `json:"address"`
	Nonce   uint64  `json:"nonce,string"`
}

type Token struct {
	Address     Address     `json:"address"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Decimals    uint8       `json:"decimals"`
	TotalSupply uint64      `json:"total_supply,string"`
	Balances    []Balance   `json:"balances,omitempty"`
	Allowances  []Allowance `json:"allowances,omitempty"`
}

type Balance struct {
	Holder Address `json:"holder"`
	Amount uint64  `json:"amount,string"`
}

type Allowance struct {
	Owner   Address `json:"owner"`
	Spender Address `json:"spender"`
	Amount  uint64  `json:"amount,string"`
}

type Sale struct {
	Contract           Address       `json:"contract"`
	Owner              Address       `json:"owner"`
	FundToken          Address       `json:"fund_token"`
	RewardToken        Address       `json:"reward_token"`
	Vesting            Address       `json:"vesting"`
	MerkleRoot         string        `json:"merkle_root"`
	UseRegistry        bool          `json:"use_registry"`
	ExchangeRate       uint64        `json:"exchange_rate,string"`
	PrivateStartTime   uint64        `json:"private_start_time,string"`
	PublicStartTime    uint64        `json:"public_start_time,string"`
	PresalePeriod      uint64        `json:"presale_period,string"`
	DistributionAmount uint64        `json:"distribution_amount,string"`
	PrivateSoldAmount  uint64        `json:"private_sold_amount,string"`
	PublicSoldAmount   uint64        `json:"public_sold_amount,string"`
	Participants       []Participant `json:"participants,omitempty"`
}

func (s *Sale) verify(tokens map[Address]*Token) error {
	if s.ExchangeRate == 0 {
		return fmt.Errorf("exchange rate should be positive")
	}
	if s.Contract.IsZero() {
		return fmt.Errorf("contract address is empty")
	}
	if _, ok := tokens[s.FundToken]; !ok {
		return fmt.Errorf("fund token %s not found", s.FundToken.String())
	}
	if _, ok := tokens[s.RewardToken]; !ok {
		return fmt.Errorf("reward token %s not found", s.RewardToken.String())
	}
	if s.MerkleRoot != "" {
		if b, err := hex.DecodeString(s.MerkleRoot); err != nil || len(b) != HashLength {
			return fmt.Errorf("merkle root should be %d hex encoded bytes", HashLength)
		}
	}
	if s.PublicStartTime+s.PresalePeriod < s.PublicStartTime {
		return fmt.Errorf("presale end time overflows")
	}

	participants := map[Address]struct{}{}
	for _, p := range s.Participants {
		if _, exists := participants[p.Address]; exists {
			return fmt.Errorf("duplicated participant %s", p.Address.String())
		}
		participants[p.Address] = struct{}{}
	}

	return nil
}

type Participant struct {
	Address         Address `json:"address"`
	FundBalance     uint64  `json:"fund_balance,string"`
	RewardBalance   uint64  `json:"reward_balance,string"`
	PrivateSoldFund uint64  `json:"private_sold_fund,string"`
}

type Whitelist struct {
	Contract Address          `json:"contract"`
	Owner    Address          `json:"owner"`
	Users    []AllowlistEntry `json:"users,omitempty"`
}

func (w *Whitelist) verify() error {
	if w.Contract.IsZero() {
		return fmt.Errorf("contract address is empty")
	}

	users := map[Address]struct{}{}
	for _, u := range w.Users {
		if _, exists := users[u.Wallet]; exists {
			return fmt.Errorf("duplicated user %s", u.Wallet.String())
		}
		users[u.Wallet] = struct{}{}
	}

	return nil
}

// AllowlistEntry is an allocation of a single wallet
type AllowlistEntry struct {
	Wallet            Address `json:"wallet"`
	PublicAllocation  uint64  `json:"public_allocation,string"`
	PrivateAllocation uint64  `json:"private_allocation,string"`
}

type Vesting struct {
	Contract        Address     `json:"contract"`
	Owner           Address     `json:"owner"`
	Operator        Address     `json:"operator"`
	RewardToken     Address     `json:"reward_token"`
	StartTime       uint64      `json:"start_time,string"`
	LockPeriod      uint64      `json:"lock_period,string"`
	ReleaseInterval uint64      `json:"release_interval,string"`
	ReleaseRate     uint64      `json:"release_rate,string"`
	InitialUnlock   uint64      `json:"initial_unlock,string"`
	VestingPeriod   uint64      `json:"vesting_period,string"`
	Recipients      []Recipient `json:"recipients,omitempty"`
}

func (v *Vesting) verify(tokens map[Address]*Token) error {
	if v.Contract.IsZero() {
		return fmt.Errorf("contract address is empty")
	}
	if _, ok := tokens[v.RewardToken]; !ok {
		return fmt.Errorf("reward token %s not found", v.RewardToken.String())
	}
	if v.ReleaseRate > PermilleBase {
		return fmt.Errorf("release rate %d is above %d", v.ReleaseRate, PermilleBase)
	}
	if v.InitialUnlock > PermilleBase {
		return fmt.Errorf("initial unlock %d is above %d", v.InitialUnlock, PermilleBase)
	}

	recipients := map[Address]struct{}{}
	for _, r := range v.Recipients {
		if _, exists := recipients[r.Address]; exists {
			return fmt.Errorf("duplicated recipient %s", r.Address.String())
		}
		recipients[r.Address] = struct{}{}
	}

	return nil
}

type Recipient struct {
	Address   Address `json:"address"`
	Amount    uint64  `json:"amount,string"`
	Withdrawn uint64  `json:"withdrawn,string"`
}

type Locking struct {
	Contract      Address `json:"contract"`
	Owner         Address `json:"owner"`
	Token         Address `json:"token"`
	PenaltyPeriod uint64  `json:"penalty_period,string"`
	Dead          Address `json:"dead"`
	Locks         []Lock  `json:"locks,omitempty"`
}

func (l *Locking) verify(tokens map[Address]*Token) error {
	if l.Contract.IsZero() {
		return fmt.Errorf("contract address is empty")
	}
	if _, ok := tokens[l.Token]; !ok {
		return fmt.Errorf("token %s not found", l.Token.String())
	}

	locks := map[Address]struct{}{}
	for _, lock := range l.Locks {
		if _, exists := locks[lock.Address]; exists {
			return fmt.Errorf("duplicated lock %s", lock.Address.String())
		}
		locks[lock.Address] = struct{}{}
	}

	return nil
}

type Lock struct {
	Address        Address `json:"address"`
	Amount         uint64  `json:"amount,string"`
	LastLockedTime uint64  `json:"last_locked_time,string"`
}
