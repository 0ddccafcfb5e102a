package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MinterTeam/minter-presale/cmd/utils"
	"github.com/MinterTeam/minter-presale/config"
	"github.com/MinterTeam/minter-presale/core/appdb"
	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/presale"
	"github.com/MinterTeam/minter-presale/core/transaction"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/secp256k1"
	"github.com/tendermint/tendermint/libs/log"
	db "github.com/tendermint/tm-db"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	fundToken   = types.BytesToAddress([]byte{0xf1})
	rewardToken = types.BytesToAddress([]byte{0xf2})

	saleContract      = types.BytesToAddress([]byte{0x51})
	vestingContract   = types.BytesToAddress([]byte{0x52})
	whitelistContract = types.BytesToAddress([]byte{0x53})
	lockingContract   = types.BytesToAddress([]byte{0x54})
)

type testAPI struct {
	blockchain *presale.Blockchain
	service    *Service
	server     *httptest.Server

	aliceKey secp256k1.PrivKey
	alice    types.Address
	nonce    uint64
}

func newTestAPI(t *testing.T, initialize bool) *testAPI {
	t.Helper()

	cfg := config.DefaultConfig()
	blockchain, err := presale.NewBlockchain(utils.NewStorage(t.TempDir(), ""), appdb.NewAppDBWithDB(db.NewMemDB()), cfg, nil)
	require.NoError(t, err)
	blockchain.SetClock(func() time.Time { return time.Unix(150, 0) })

	api := &testAPI{
		blockchain: blockchain,
		service:    NewService(blockchain, cfg, "test", log.NewNopLogger()),
		aliceKey:   secp256k1.GenPrivKey(),
	}
	api.alice = types.BytesToAddress(api.aliceKey.PubKey().Address())

	if initialize {
		require.NoError(t, blockchain.InitChain(api.genesis(), 0))
	}

	gwmux := runtime.NewServeMux()
	require.NoError(t, api.service.RegisterRoutes(gwmux))

	mux := http.NewServeMux()
	mux.Handle("/v2/custom/", api.service.CustomHandlers())
	mux.Handle("/v2/", gwmux)

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)

	return api
}

func (api *testAPI) genesis() types.AppState {
	return types.AppState{
		Tokens: []types.Token{
			{
				Address:     fundToken,
				Name:        "Fund",
				Symbol:      "FUND",
				Decimals:    6,
				TotalSupply: 10_000_000,
				Balances:    []types.Balance{{Holder: api.alice, Amount: 10_000_000}},
			},
			{
				Address:     rewardToken,
				Name:        "Reward",
				Symbol:      "RWD",
				Decimals:    9,
				TotalSupply: 1e12,
				Balances:    []types.Balance{{Holder: vestingContract, Amount: 1e12}},
			},
		},
		Sale: types.Sale{
			Contract:         saleContract,
			Owner:            api.alice,
			FundToken:        fundToken,
			RewardToken:      rewardToken,
			Vesting:          vestingContract,
			ExchangeRate:     types.Accuracy,
			PrivateStartTime: 100,
			PublicStartTime:  200,
			PresalePeriod:    100,
		},
		Whitelist: types.Whitelist{Contract: whitelistContract, Owner: api.alice},
		Vesting: types.Vesting{
			Contract:        vestingContract,
			Owner:           api.alice,
			Operator:        saleContract,
			RewardToken:     rewardToken,
			LockPeriod:      600,
			ReleaseInterval: 60,
			ReleaseRate:     100,
			InitialUnlock:   100,
		},
		Locking: types.Locking{
			Contract: lockingContract,
			Owner:    api.alice,
			Token:    rewardToken,
		},
	}
}

func (api *testAPI) rawTx(t *testing.T, data transaction.Data) string {
	t.Helper()

	tx, err := transaction.NewTx(api.nonce+1, data, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(api.aliceKey))

	raw, err := tx.Serialize()
	require.NoError(t, err)

	return hex.EncodeToString(raw)
}

func (api *testAPI) get(t *testing.T, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := http.Get(api.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func (api *testAPI) post(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(api.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()

	result := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(body).Decode(&result))
	return result
}

func TestService_NotInitialized(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, false)

	code, body := api.get(t, "/v2/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["initialized"])
	assert.Equal(t, "test", body["version"])

	code, _ = api.get(t, "/v2/sale/config")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestService_Queries(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)

	code, body := api.get(t, "/v2/status")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1", body["latest_height"])
	assert.Equal(t, true, body["initialized"])

	code, body = api.get(t, "/v2/sale/config")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, saleContract.String(), body["contract"])

	code, body = api.get(t, "/v2/vesting/config")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, vestingContract.String(), body["contract"])

	code, body = api.get(t, "/v2/vesting/"+api.alice.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, api.alice.String(), body["address"])
	assert.Equal(t, "0", body["amount"])

	code, body = api.get(t, "/v2/locking/config")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, lockingContract.String(), body["contract"])

	code, body = api.get(t, "/v2/locking/accounts?limit=5&order_by=desc")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["accounts"])

	code, body = api.get(t, "/v2/token/"+fundToken.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "FUND", body["symbol"])

	code, body = api.get(t, "/v2/token/"+fundToken.String()+"/balance/"+api.alice.String())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "10000000", body["amount"])

	code, body = api.get(t, "/v2/sale/participants/count")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0", body["count"])

	code, _ = api.get(t, "/v2/token/"+types.BytesToAddress([]byte{0xee}).String())
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.get(t, "/v2/sale/participant/nonsense")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.get(t, "/v2/sale/participant/"+api.alice.String())
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.get(t, "/v2/sale/participants?page=x")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestService_GenericQuery(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)

	code, body := api.post(t, "/v2/query", map[string]interface{}{
		"token_info": map[string]string{"token": rewardToken.String()},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RWD", body["symbol"])

	code, _ = api.post(t, "/v2/query", map[string]interface{}{
		"sale_config": map[string]string{},
		"users_count": map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestService_Transactions(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)
	approve := transaction.ApproveData{Token: fundToken, Spender: saleContract, Amount: 1_000_000}

	code, body := api.post(t, "/v2/check_transaction", txRequest{Tx: api.rawTx(t, approve)})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, uint64(1), api.blockchain.Height())

	raw := api.rawTx(t, approve)
	code, body = api.post(t, "/v2/send_transaction", txRequest{Tx: raw})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "2", body["height"])
	assert.NotEmpty(t, body["hash"])
	api.nonce++

	code, body = api.post(t, "/v2/send_transaction", txRequest{Tx: raw})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, uint64(2), api.blockchain.Height())

	code, _ = api.post(t, "/v2/send_transaction", txRequest{Tx: "zz"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.get(t, "/v2/events/2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2", body["height"])

	code, _ = api.get(t, "/v2/events/99")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = api.get(t, "/v2/token/"+fundToken.String()+"/balance/"+api.alice.String()+"?height=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "10000000", body["amount"])
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.server.URL+"/v2/subscribe?query="+url.QueryEscape("tx.type = '0x03'"), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := api.blockchain.DeliverTx(mustDecodeHex(t, api.rawTx(t, transaction.ApproveData{Token: fundToken, Spender: saleContract, Amount: 1})))
	require.True(t, result.IsOK(), result.Log)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)

	var message struct {
		Query string `json:"query"`
		Data  struct {
			Height string `json:"height"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &message))
	assert.Equal(t, "tx.type = '0x03'", message.Query)
	assert.Equal(t, "2", message.Data.Height)

	badReq, err := http.NewRequestWithContext(ctx, http.MethodGet, api.server.URL+"/v2/subscribe?query="+url.QueryEscape("tx.type =="), nil)
	require.NoError(t, err)
	badResp, err := http.DefaultClient.Do(badReq)
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestService_MerkleVerify(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)
	bob := types.BytesToAddress([]byte{0xb0})

	tree := merkle.BuildTree([]merkle.Hash{
		merkle.LeafHash(api.alice.String(), 100, 0),
		merkle.LeafHash(bob.String(), 5, 5),
	})

	code, body := api.post(t, "/v2/custom/merkle/verify", merkleVerifyRequest{
		Root:       tree.Root(),
		Address:    bob.String(),
		PrivateCap: "5",
		PublicCap:  "5",
		Proof:      tree.Proof(1),
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, tree.Root(), body["computed_root"])

	code, body = api.post(t, "/v2/custom/merkle/verify", merkleVerifyRequest{
		Root:       tree.Root(),
		Address:    bob.String(),
		PrivateCap: "6",
		PublicCap:  "5",
		Proof:      tree.Proof(1),
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["valid"])

	code, _ = api.post(t, "/v2/custom/merkle/verify", merkleVerifyRequest{Address: bob.String(), Proof: []string{"00"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestService_ParticipantsCSV(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)

	resp, err := http.Get(api.server.URL + "/v2/custom/participants.csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "address,fund_balance,reward_balance,private_sold_fund", strings.TrimSpace(string(content)))
}

func TestGRPCServer(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, true)

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterApiServiceServer(server, NewGRPCServer(api.service))
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return listener.DialContext(ctx) }),
		grpc.WithInsecure(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()

	statusResponse := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, "/presale.v2.ApiService/Status", &emptypb.Empty{}, statusResponse))
	assert.Equal(t, "1", statusResponse.GetFields()["latest_height"].GetStringValue())

	queryRequest, err := structpb.NewStruct(map[string]interface{}{
		"height": "1",
		"query": map[string]interface{}{
			"balance": map[string]interface{}{"token": fundToken.String(), "address": api.alice.String()},
		},
	})
	require.NoError(t, err)
	queryResponse := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, "/presale.v2.ApiService/Query", queryRequest, queryResponse))
	assert.Equal(t, "10000000", queryResponse.GetFields()["amount"].GetStringValue())

	txRequest, err := structpb.NewStruct(map[string]interface{}{"tx": "not hex"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, "/presale.v2.ApiService/SendTransaction", txRequest, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	eventsRequest, err := structpb.NewStruct(map[string]interface{}{"height": 1})
	require.NoError(t, err)
	eventsResponse := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, "/presale.v2.ApiService/Events", eventsRequest, eventsResponse))
	assert.Equal(t, "1", eventsResponse.GetFields()["height"].GetStringValue())
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()

	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}
