package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/MinterTeam/minter-presale/cli/service"
	"github.com/spf13/cobra"
)

var ManagerCommand = &cobra.Command{
	Use:                "manager",
	Short:              "Presale manager execute command",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		newArgs := setParentFlags(cmd, args)
		if err := RootCmd.PersistentPreRunE(cmd, nil); err != nil {
			return err
		}

		console := service.ConfigureManagerConsole(apiURL(cfg.APIListenAddress), cmd.OutOrStdout())
		if err := console.Execute(newArgs); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		return nil
	},
}

var ManagerConsole = &cobra.Command{
	Use:                "console",
	Short:              "Presale CLI manager",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = setParentFlags(cmd, args)
		if err := RootCmd.PersistentPreRunE(cmd, nil); err != nil {
			return err
		}

		console := service.ConfigureManagerConsole(apiURL(cfg.APIListenAddress), cmd.OutOrStdout())
		if err := console.Cli(cmd.Context()); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return nil
	},
}

// setParentFlags moves --name=value args known to the root command into its flags,
// the config is reloaded afterwards since flag parsing is disabled
func setParentFlags(cmd *cobra.Command, args []string) (newArgs []string) {
	for _, arg := range args {
		split := strings.SplitN(arg, "=", 2)
		if len(split) == 2 {
			err := cmd.Parent().PersistentFlags().Set(strings.TrimLeft(split[0], "-"), split[1])
			if err == nil {
				continue
			}
		}
		newArgs = append(newArgs, arg)
	}
	return newArgs
}

// apiURL turns a listen address like tcp://0.0.0.0:8843 into a dialable http url
func apiURL(listenAddr string) string {
	u, err := url.Parse(listenAddr)
	if err != nil || u.Host == "" {
		return "http://" + strings.TrimPrefix(listenAddr, "tcp://")
	}

	host, port := u.Hostname(), u.Port()
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	if port != "" {
		host += ":" + port
	}

	return "http://" + host
}
