package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	tmLog "github.com/tendermint/tendermint/libs/log"
)

var ExportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export the state at a height as genesis JSON",
	RunE:  export,
}

func init() {
	ExportCommand.Flags().Uint64("height", 0, "height of the state, 0 for the latest")
	ExportCommand.Flags().String("output", "", "file to write, stdout when empty")
	ExportCommand.Flags().String("note", "", "note of the exported genesis")
}

func export(cmd *cobra.Command, _ []string) error {
	height, err := cmd.Flags().GetUint64("height")
	if err != nil {
		return err
	}

	app, err := openBlockchain(tmLog.NewNopLogger())
	if err != nil {
		return err
	}
	defer func() { _ = app.Stop() }()

	appState, err := app.Export(height)
	if err != nil {
		return errors.Wrapf(err, "export state at height %d", height)
	}
	appState.Note = mustGetString(cmd, "note")

	output := mustGetString(cmd, "output")
	if output == "" {
		return writeGenesis(cmd.OutOrStdout(), appState)
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writeGenesis(file, appState); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Exported state of height %d to %s\n", app.Height(), output)
	return err
}

func writeGenesis(w io.Writer, appState types.AppState) error {
	if err := appState.Verify(); err != nil {
		return errors.Wrap(err, "exported state is invalid")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(appState)
}
