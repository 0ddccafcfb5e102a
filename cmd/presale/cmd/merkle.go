package cmd

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var MerkleCommand = &cobra.Command{
	Use:   "merkle",
	Short: "Build the whitelist root and proofs from a csv of address,private_cap,public_cap",
	RunE:  buildWhitelist,
}

func init() {
	MerkleCommand.Flags().String("input", "", "csv file, stdin when empty")
}

type whitelistEntry struct {
	Address    string   `json:"address"`
	PrivateCap uint64   `json:"private_cap,string"`
	PublicCap  uint64   `json:"public_cap,string"`
	Leaf       string   `json:"leaf"`
	Proof      []string `json:"proof"`
}

type whitelistOutput struct {
	Root    string           `json:"root"`
	Entries []whitelistEntry `json:"entries"`
}

func buildWhitelist(cmd *cobra.Command, _ []string) error {
	var in io.Reader = cmd.InOrStdin()
	if input := mustGetString(cmd, "input"); input != "" {
		file, err := os.Open(input)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	entries, err := readWhitelist(in)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(whitelistProofs(entries))
}

// readWhitelist parses csv rows, a header row starting with "address" is skipped
func readWhitelist(r io.Reader) ([]whitelistEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}

	entries := make([]whitelistEntry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		if i == 0 && strings.EqualFold(record[0], "address") {
			continue
		}

		address, err := types.AddressFromString(record[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		if _, ok := seen[address.String()]; ok {
			return nil, errors.Errorf("line %d: duplicate address %s", i+1, address)
		}
		seen[address.String()] = struct{}{}

		privateCap, err := strconv.ParseUint(record[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: private cap", i+1)
		}
		publicCap, err := strconv.ParseUint(record[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: public cap", i+1)
		}

		entries = append(entries, whitelistEntry{
			Address:    address.String(),
			PrivateCap: privateCap,
			PublicCap:  publicCap,
		})
	}

	if len(entries) == 0 {
		return nil, errors.New("whitelist is empty")
	}

	return entries, nil
}

func whitelistProofs(entries []whitelistEntry) whitelistOutput {
	leaves := make([]merkle.Hash, len(entries))
	for i, entry := range entries {
		leaves[i] = merkle.LeafHash(entry.Address, entry.PrivateCap, entry.PublicCap)
	}

	tree := merkle.BuildTree(leaves)
	for i := range entries {
		entries[i].Leaf = leaves[i].String()
		entries[i].Proof = tree.Proof(i)
		if entries[i].Proof == nil {
			entries[i].Proof = []string{}
		}
	}

	return whitelistOutput{Root: tree.Root(), Entries: entries}
}
