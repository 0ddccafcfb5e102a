package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MinterTeam/minter-presale/cmd/utils"
	"github.com/MinterTeam/minter-presale/config"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmOS "github.com/tendermint/tendermint/libs/os"
)

// Contract and token addresses of the example genesis
var (
	exampleFundToken   = types.BytesToAddress([]byte{0xf1})
	exampleRewardToken = types.BytesToAddress([]byte{0xf2})

	exampleSale      = types.BytesToAddress([]byte{0x51})
	exampleVesting   = types.BytesToAddress([]byte{0x52})
	exampleWhitelist = types.BytesToAddress([]byte{0x53})
	exampleLocking   = types.BytesToAddress([]byte{0x54})
	exampleDead      = types.BytesToAddress([]byte{0xde, 0xad})
)

var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and an example genesis",
	RunE:  initHome,
}

func init() {
	InitCommand.Flags().String("owner", "", "bech32 address owning the contracts and the fund token supply")
	InitCommand.Flags().Bool("force", false, "overwrite an existing genesis")
	_ = InitCommand.MarkFlagRequired("owner")
}

func initHome(cmd *cobra.Command, _ []string) error {
	owner, err := types.AddressFromString(mustGetString(cmd, "owner"))
	if err != nil {
		return errors.Wrap(err, "owner")
	}

	config.EnsureRoot(utils.GetPresaleHome())

	genesisFile := cfg.GenesisFile()
	force, _ := cmd.Flags().GetBool("force")
	if tmOS.FileExists(genesisFile) && !force {
		return errors.Errorf("genesis %s already exists, use --force to overwrite", genesisFile)
	}

	genesis := exampleGenesis(owner, uint64(time.Now().Unix()))
	if err := genesis.Verify(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(genesisFile, data, 0644); err != nil {
		return errors.Wrap(err, "write genesis")
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\nGenesis: %s\n", utils.GetPresaleConfigPath(), genesisFile)
	return err
}

// exampleGenesis starts the private round in a day and the public one a week later
func exampleGenesis(owner types.Address, now uint64) types.AppState {
	const (
		day          = 24 * 60 * 60
		fundSupply   = 1_000_000_000_000
		rewardSupply = 100_000_000_000_000_000
	)

	privateStart := now + day
	publicStart := privateStart + 7*day

	return types.AppState{
		Note: "example presale genesis",
		Tokens: []types.Token{
			{
				Address:     exampleFundToken,
				Name:        "USD Coin",
				Symbol:      "USDC",
				Decimals:    6,
				TotalSupply: fundSupply,
				Balances:    []types.Balance{{Holder: owner, Amount: fundSupply}},
			},
			{
				Address:     exampleRewardToken,
				Name:        "Presale Token",
				Symbol:      "PRE",
				Decimals:    18,
				TotalSupply: rewardSupply,
				Balances:    []types.Balance{{Holder: exampleVesting, Amount: rewardSupply}},
			},
		},
		Sale: types.Sale{
			Contract:         exampleSale,
			Owner:            owner,
			FundToken:        exampleFundToken,
			RewardToken:      exampleRewardToken,
			Vesting:          exampleVesting,
			UseRegistry:      true,
			ExchangeRate:     types.Accuracy,
			PrivateStartTime: privateStart,
			PublicStartTime:  publicStart,
			PresalePeriod:    7 * day,
		},
		Whitelist: types.Whitelist{
			Contract: exampleWhitelist,
			Owner:    owner,
		},
		Vesting: types.Vesting{
			Contract:        exampleVesting,
			Owner:           owner,
			Operator:        exampleSale,
			RewardToken:     exampleRewardToken,
			LockPeriod:      30 * day,
			ReleaseInterval: day,
			ReleaseRate:     10,
			InitialUnlock:   100,
		},
		Locking: types.Locking{
			Contract:      exampleLocking,
			Owner:         owner,
			Token:         exampleRewardToken,
			PenaltyPeriod: 90 * day,
			Dead:          exampleDead,
		},
	}
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return value
}
