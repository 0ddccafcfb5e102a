package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/crypto/secp256k1"
)

var KeysCommand = &cobra.Command{
	Use:   "keys",
	Short: "Manage secp256k1 keys signing presale calls",
}

var keysNewCommand = &cobra.Command{
	Use:   "new",
	Short: "Generate a new private key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printKey(cmd, secp256k1.GenPrivKey())
	},
}

var keysShowCommand = &cobra.Command{
	Use:   "show [private key hex]",
	Short: "Show public key and address of a private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, err := parsePrivKey(args[0])
		if err != nil {
			return err
		}
		return printKey(cmd, privKey)
	},
}

func init() {
	KeysCommand.AddCommand(keysNewCommand, keysShowCommand)
}

// parsePrivKey accepts 32 bytes in hex, with or without 0x
func parsePrivKey(s string) (secp256k1.PrivKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "private key should be hex encoded")
	}
	if len(b) != secp256k1.PrivKeySize {
		return nil, errors.Errorf("private key should be %d bytes, got %d", secp256k1.PrivKeySize, len(b))
	}

	privKey, _ := btcec.PrivKeyFromBytes(btcec.S256(), b)
	if privKey.D.Sign() == 0 || privKey.D.Cmp(btcec.S256().N) >= 0 {
		return nil, errors.New("private key is out of the curve order")
	}

	return secp256k1.PrivKey(privKey.Serialize()), nil
}

// addressOfKey is the bech32 address derived from the compressed public key
func addressOfKey(privKey secp256k1.PrivKey) types.Address {
	_, pubKey := btcec.PrivKeyFromBytes(btcec.S256(), privKey)
	return types.BytesToAddress(secp256k1.PubKey(pubKey.SerializeCompressed()).Address())
}

func printKey(cmd *cobra.Command, privKey secp256k1.PrivKey) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Private key: %s\nPublic key:  %s\nAddress:     %s\n",
		hex.EncodeToString(privKey),
		hex.EncodeToString(privKey.PubKey().Bytes()),
		addressOfKey(privKey).String(),
	)
	return err
}
