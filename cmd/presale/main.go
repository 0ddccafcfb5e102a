package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MinterTeam/minter-presale/cmd/presale/cmd"
	"github.com/MinterTeam/minter-presale/cmd/utils"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.PersistentFlags().StringVar(&utils.PresaleHome, "home-dir", "", "base dir (default is $HOME/.presale)")
	rootCmd.PersistentFlags().StringVar(&utils.PresaleConfig, "config", "", "path to config (default is $(home-dir)/config/config.toml)")
	rootCmd.PersistentFlags().Bool("testnet", false, "use \"true\" for testnet, mainnet is default")

	rootCmd.AddCommand(
		cmd.RunNode,
		cmd.InitCommand,
		cmd.ExportCommand,
		cmd.KeysCommand,
		cmd.MerkleCommand,
		cmd.ManagerConsole,
		cmd.ManagerCommand,
		cmd.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
