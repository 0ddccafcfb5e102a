package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNodeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.0.0","network":"testnet","latest_height":"42","latest_app_hash":"ABCD","latest_time":"1700000000","initial_height":"1","keep_last_states":"120","initialized":true,"last_call":{"height":"41","type":"0x11","code":0,"duration":0.01,"timestamp":"1700000000"}}`))
	})
	mux.HandleFunc("/v2/sale/config", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exchange_rate":"1000000000000000000","private_start_time":"100","public_start_time":"200","presale_period":"100"}`))
	})
	mux.HandleFunc("/v2/sale/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"phase":"public","private_sold_amount":"10","public_sold_amount":"5","distribution_amount":"15","participants_count":"2","end_time":"300"}`))
	})
	mux.HandleFunc("/v2/sale/participant/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":3,"message":"participant not found","details":[]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient(t *testing.T) {
	t.Parallel()

	server := newTestNodeAPI(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), status.Height)
	assert.Equal(t, "0x11", status.LastCall.Type)

	saleStatus, err := client.SaleStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "public", saleStatus.Phase)
	assert.Equal(t, uint64(2), saleStatus.ParticipantsCount)

	_, err = client.Participant(ctx, "presale1unknown")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 3, apiErr.Code)
	assert.Equal(t, "participant not found", apiErr.Message)

	_, err = client.Raw(ctx, "/v2/missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestManagerConsole_Execute(t *testing.T) {
	t.Parallel()

	server := newTestNodeAPI(t)
	out := new(bytes.Buffer)
	console := ConfigureManagerConsole(server.URL, out)

	require.NoError(t, console.Execute([]string{"status"}))
	assert.Contains(t, out.String(), "Latest Height:")
	assert.Contains(t, out.String(), "42")

	out.Reset()
	require.NoError(t, console.Execute([]string{"status", "--json"}))
	assert.Contains(t, out.String(), `"latest_height": "42"`)

	out.Reset()
	require.NoError(t, console.Execute([]string{"sale"}))
	assert.Contains(t, out.String(), "public")

	assert.Error(t, console.Execute([]string{"participant", "--address=presale1unknown"}))
	assert.Error(t, console.Execute([]string{"participant"}))
}

func TestCompleter(t *testing.T) {
	t.Parallel()

	console := ConfigureManagerConsole("http://127.0.0.1:0", new(bytes.Buffer))
	complete := completer(console.cli.Commands)

	buf := prompt.NewBuffer()
	buf.InsertText("sta", false, true)
	suggests := complete(*buf.Document())
	require.Len(t, suggests, 1)
	assert.Equal(t, "status", suggests[0].Text)

	buf = prompt.NewBuffer()
	buf.InsertText("participant --", false, true)
	suggests = complete(*buf.Document())
	texts := make([]string, 0, len(suggests))
	for _, s := range suggests {
		texts = append(texts, s.Text)
	}
	assert.Contains(t, texts, "--address=")
	assert.Contains(t, texts, "--json ")
}

func TestProgressScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(1), progressScale(1000))
	assert.Equal(t, uint64(1000), progressScale(1_000_000_000))
}
