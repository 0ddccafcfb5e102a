package cmd

import (
	"github.com/MinterTeam/minter-presale/cmd/utils"
	"github.com/MinterTeam/minter-presale/config"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:           "presale",
	Short:         "Presale Node",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetConfigFile(utils.GetPresaleConfigPath())
		cfg = config.GetConfig()

		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "read config")
		}

		if err := v.Unmarshal(cfg); err != nil {
			return errors.Wrap(err, "parse config")
		}

		if cfg.RootDir == "" {
			cfg.SetRoot(utils.GetPresaleHome())
		}

		if err := cfg.ValidateBasic(); err != nil {
			return errors.Wrap(err, "invalid config")
		}

		types.AddressPrefix = cfg.AddressPrefix

		isTestnet, _ := cmd.Flags().GetBool("testnet")
		if isTestnet {
			types.CurrentChainID = types.ChainTestnet
			version.Version += "-testnet"
		}

		return nil
	},
}
