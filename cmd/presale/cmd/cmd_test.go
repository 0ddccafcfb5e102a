package cmd

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/secp256k1"
)

func testAddress(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

func TestExampleGenesis_Verify(t *testing.T) {
	t.Parallel()

	genesis := exampleGenesis(testAddress(1), 1_700_000_000)
	require.NoError(t, genesis.Verify())
	assert.Greater(t, genesis.Sale.PublicStartTime, genesis.Sale.PrivateStartTime)
	assert.Equal(t, testAddress(1), genesis.Tokens[0].Balances[0].Holder)
}

func TestWhitelist(t *testing.T) {
	t.Parallel()

	input := "address,private_cap,public_cap\n" +
		"# comment\n" +
		testAddress(1).String() + ",100,50\n" +
		testAddress(2).String() + ", 0, 70\n" +
		testAddress(3).String() + ",30,0\n"

	entries, err := readWhitelist(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	out := whitelistProofs(entries)
	require.NotEmpty(t, out.Root)
	for _, entry := range out.Entries {
		assert.NoError(t, merkle.Verify(out.Root, entry.Address, entry.PrivateCap, entry.PublicCap, entry.Proof), entry.Address)
	}

	assert.Error(t, merkle.Verify(out.Root, entries[0].Address, entries[0].PrivateCap+1, entries[0].PublicCap, entries[0].Proof))
}

func TestWhitelist_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":     "address,private_cap,public_cap\n",
		"address":   "presale1broken,1,1\n",
		"cap":       testAddress(1).String() + ",x,1\n",
		"fields":    testAddress(1).String() + ",1\n",
		"duplicate": testAddress(1).String() + ",1,1\n" + testAddress(1).String() + ",2,2\n",
	}

	for name, input := range cases {
		_, err := readWhitelist(strings.NewReader(input))
		assert.Error(t, err, name)
	}
}

func TestMerkleCommand(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	MerkleCommand.SetIn(strings.NewReader(testAddress(7).String() + ",10,20\n"))
	MerkleCommand.SetOut(out)
	require.NoError(t, buildWhitelist(MerkleCommand, nil))

	leaf := merkle.LeafHash(testAddress(7).String(), 10, 20)
	assert.Contains(t, out.String(), `"root": "`+leaf.String()+`"`)
	assert.Contains(t, out.String(), `"proof": []`)
}

func TestParsePrivKey(t *testing.T) {
	t.Parallel()

	privKey := secp256k1.GenPrivKey()

	parsed, err := parsePrivKey("0x" + hex.EncodeToString(privKey))
	require.NoError(t, err)
	assert.Equal(t, []byte(privKey), []byte(parsed))
	assert.Equal(t, types.BytesToAddress(privKey.PubKey().Address()), addressOfKey(parsed))

	_, err = parsePrivKey("zz")
	assert.Error(t, err)
	_, err = parsePrivKey("0102")
	assert.Error(t, err)
	_, err = parsePrivKey(strings.Repeat("00", 32))
	assert.Error(t, err)
}

func TestApiURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://127.0.0.1:8843", apiURL("tcp://0.0.0.0:8843"))
	assert.Equal(t, "http://10.0.0.1:8843", apiURL("tcp://10.0.0.1:8843"))
	assert.Equal(t, "http://localhost:1317", apiURL("localhost:1317"))
}
